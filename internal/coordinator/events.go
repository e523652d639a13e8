package coordinator

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/faithogundimu/core/pkg/models"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventRunStarted indicates a roster run has begun.
	EventRunStarted EventType = "run_started"
	// EventCaseStarted indicates a patient workflow has begun.
	EventCaseStarted EventType = "case_started"
	// EventCaseCompleted indicates a patient workflow produced a verdict.
	EventCaseCompleted EventType = "case_completed"
	// EventCaseFailed indicates a patient workflow failed and was replaced by
	// a synthetic blocked record.
	EventCaseFailed EventType = "case_failed"
	// EventGenomicsStarted indicates the intelligence pipeline has begun for a
	// patient.
	EventGenomicsStarted EventType = "genomics_started"
	// EventGenomicsCompleted indicates the intelligence pipeline finished.
	EventGenomicsCompleted EventType = "genomics_completed"
	// EventRunDone indicates the dashboard is assembled.
	EventRunDone EventType = "run_done"
)

// Event is emitted by the coordinator as a run progresses. Consumed by the
// CLI progress display.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// PatientID is the related patient, if applicable.
	PatientID string
	// Status is the readiness verdict, for case_completed events.
	Status models.OverallStatus
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter fans events out to a buffered channel without ever blocking
// the run. A full channel drops the event and counts the drop.
type EventEmitter struct {
	events  chan Event
	dropped atomic.Int64
}

// NewEventEmitter creates an emitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event, dropping it if the consumer has fallen behind.
func (e *EventEmitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case e.events <- event:
	default:
		count := e.dropped.Add(1)
		log.Printf("[coordinator] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the event channel. Call only after the run has finished.
func (e *EventEmitter) Close() {
	close(e.events)
}
