// Package workflow sequences one patient's readiness run: the squad fan-out
// followed by synthesis, exactly once. There is no retry at this level; a
// failed fetcher surfaces downstream as a blocker.
package workflow

import (
	"context"
	"fmt"

	"github.com/faithogundimu/core/internal/squad"
	"github.com/faithogundimu/core/pkg/models"
)

// Synthesizer is the verdict builder the workflow hands results to.
type Synthesizer interface {
	Synthesize(ctx context.Context, patientID string, results squad.ResultSet) models.CaseReadiness
}

// Runner is the fan-out the workflow drives.
type Runner interface {
	Run(ctx context.Context, patientID string) (squad.ResultSet, error)
}

// CaseWorkflow produces one CaseReadiness per invocation. Safe for concurrent
// use across patients.
type CaseWorkflow struct {
	squad       Runner
	synthesizer Synthesizer
}

// New builds a CaseWorkflow.
func New(r Runner, s Synthesizer) *CaseWorkflow {
	return &CaseWorkflow{squad: r, synthesizer: s}
}

// Run assembles and synthesizes the case for one patient. An error means the
// run could not even fan out; partial source failures are inside the verdict.
func (w *CaseWorkflow) Run(ctx context.Context, patientID string) (models.CaseReadiness, error) {
	results, err := w.squad.Run(ctx, patientID)
	if err != nil {
		return models.CaseReadiness{}, fmt.Errorf("case workflow for %s: %w", patientID, err)
	}
	return w.synthesizer.Synthesize(ctx, patientID, results), nil
}
