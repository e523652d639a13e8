// Package reason defines the reasoning capability used by the case
// synthesizer and the genomics pipeline stages. The capability is an opaque
// decision/extraction function: given structured context it returns
// structured text or JSON. Two implementations exist: an Anthropic-backed
// reasoner and a deterministic rule engine used as the default and in tests.
package reason

import (
	"context"
	"encoding/json"
)

// Task names the decision the caller wants performed.
type Task string

const (
	// TaskCaseSummary produces a one-line readiness summary for a patient.
	TaskCaseSummary Task = "case_summary"
	// TaskInterpretMutation produces clinical significance, mechanism, tier
	// and approved-therapy match for one mutation.
	TaskInterpretMutation Task = "interpret_mutation"
	// TaskReportSummary produces the executive summary of a genomics report.
	TaskReportSummary Task = "report_summary"
)

// Request is the structured context handed to the reasoner.
type Request struct {
	// Task selects the decision to perform.
	Task Task
	// PatientID scopes the request for logging.
	PatientID string
	// Context carries task-specific structured fields.
	Context map[string]any
}

// Result is the reasoner's structured output. Text is always set; JSON is set
// for tasks whose contract is a JSON document.
type Result struct {
	Text string
	JSON json.RawMessage
}

// Reasoner is the capability contract. Implementations must be safe for
// concurrent use; calls are independent and carry no session state.
type Reasoner interface {
	Reason(ctx context.Context, req Request) (Result, error)
}

// MutationCall is the JSON document contract for TaskInterpretMutation.
type MutationCall struct {
	Gene            string `json:"gene"`
	Variant         string `json:"variant"`
	Significance    string `json:"significance"`
	Mechanism       string `json:"mechanism"`
	Tier            string `json:"tier"`
	ApprovedTherapy string `json:"approved_therapy"`
	Prevalence      string `json:"prevalence"`
}
