// Package fetch defines the domain fetcher contract used by the specialist
// squad. A fetcher queries one external collaborator for one patient and
// returns normalized records or an explicit not-found signal. "No data" is a
// valid result, never an error; a fetcher errors only when the collaborator
// is unreachable or returns malformed data.
package fetch

import (
	"context"
	"fmt"

	"github.com/faithogundimu/core/pkg/models"
)

// DataSourceError means a collaborator was reachable but failed: malformed
// data, transport failure, or a timeout. It is captured at the squad
// boundary and surfaced downstream as a blocker, never as a crash.
type DataSourceError struct {
	// Domain is the domain whose fetch failed.
	Domain models.DomainTag
	// Source names the collaborator for the blocker description.
	Source string
	// TimedOut marks a deadline expiry, handled identically to a failure.
	TimedOut bool
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DataSourceError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s source %s timed out: %v", e.Domain, e.Source, e.Err)
	}
	return fmt.Sprintf("%s source %s failed: %v", e.Domain, e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Result is one domain's outcome for one patient. Exactly one of the three
// shapes holds: records present, NotFound set, or Err set.
type Result struct {
	Domain models.DomainTag
	// Records are the normalized records, nil when NotFound or Err.
	Records []models.DomainRecord
	// NotFound means the collaborator was reachable and had nothing. This is
	// distinct from Err by contract.
	NotFound bool
	// NotFoundReason explains the absence when the source provided one.
	NotFoundReason string
	// NotFoundAdvice is the source's suggested follow-up, when provided.
	NotFoundAdvice string
	// Err is the captured failure, set by the squad, never by a fetcher.
	Err *DataSourceError
}

// Found reports whether the result carries usable records.
func (r Result) Found() bool {
	return r.Err == nil && !r.NotFound && len(r.Records) > 0
}

// Fetcher queries one domain for one patient. Implementations are
// side-effect-free and safe for concurrent use across patients.
type Fetcher interface {
	// Domain returns the domain this fetcher serves.
	Domain() models.DomainTag
	// Fetch returns the domain result. A returned error means the
	// collaborator failed; absence of data must be reported via
	// Result.NotFound instead.
	Fetch(ctx context.Context, patientID string) (Result, error)
}
