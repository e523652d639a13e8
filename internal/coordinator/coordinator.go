package coordinator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/faithogundimu/core/internal/genomics"
	"github.com/faithogundimu/core/pkg/models"
)

// CaseRunner is the Phase-1 workflow contract.
type CaseRunner interface {
	Run(ctx context.Context, patientID string) (models.CaseReadiness, error)
}

// ReportRunner is the Phase-2 pipeline contract.
type ReportRunner interface {
	Run(ctx context.Context, patientID string, profile *models.GenomicsProfile, clinical genomics.ClinicalContext) models.GenomicsReport
}

// Coordinator runs the full roster. Phase 1 runs with bounded concurrency
// across patients; each eligible patient's Phase-2 pipeline runs inside the
// same slot, so the concurrency bound covers both phases.
type Coordinator struct {
	workflow CaseRunner
	pipeline ReportRunner
	maxCases int
	logger   *DebugLogger
	emitter  *EventEmitter
	now      func() time.Time
	newID    func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxConcurrentCases bounds how many patient workflows run at once.
func WithMaxConcurrentCases(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxCases = n
		}
	}
}

// WithLogger directs coordinator debug output.
func WithLogger(l *DebugLogger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithEmitter directs run progress events.
func WithEmitter(e *EventEmitter) Option {
	return func(c *Coordinator) { c.emitter = e }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New builds a Coordinator. The pipeline may be nil when Phase 2 is disabled.
func New(workflow CaseRunner, pipeline ReportRunner, opts ...Option) (*Coordinator, error) {
	if workflow == nil {
		return nil, fmt.Errorf("coordinator requires a case workflow")
	}

	c := &Coordinator{
		workflow: workflow,
		pipeline: pipeline,
		maxCases: 8,
		logger:   NopLogger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// caseOutcome is one patient's run result collected at the join.
type caseOutcome struct {
	readiness models.CaseReadiness
	report    *models.GenomicsReport
}

// Run executes the roster and assembles the dashboard. Every roster patient
// gets exactly one readiness entry; workflow failures and panics become
// synthetic blocked records, never dropped patients.
func (c *Coordinator) Run(ctx context.Context, roster *models.Roster) (models.Dashboard, error) {
	if roster == nil || len(roster.Patients) == 0 {
		return models.Dashboard{}, fmt.Errorf("coordinator run: empty roster")
	}

	runID := c.newID()
	c.logger.Log("run %s: %d patient(s), max %d concurrent", runID, len(roster.Patients), c.maxCases)
	c.emit(Event{Type: EventRunStarted, Message: fmt.Sprintf("%d patients on roster", len(roster.Patients))})

	var mu sync.Mutex
	outcomes := make(map[string]caseOutcome, len(roster.Patients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxCases)
	for _, entry := range roster.Patients {
		entry := entry
		g.Go(func() error {
			outcome := c.runCase(gctx, entry)
			mu.Lock()
			outcomes[entry.PatientID] = outcome
			mu.Unlock()
			return nil
		})
	}
	// Case errors are converted to synthetic records, so the only wait error
	// is context cancellation.
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, fmt.Errorf("coordinator run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return models.Dashboard{}, fmt.Errorf("coordinator run: %w", err)
	}

	dashboard := c.assemble(runID, roster, outcomes)
	c.emit(Event{Type: EventRunDone, Message: fmt.Sprintf("%d/%d ready", dashboard.Summary.Ready, dashboard.Summary.TotalPatients)})
	c.logger.Log("run %s done: ready=%d in_progress=%d blocked=%d",
		runID, dashboard.Summary.Ready, dashboard.Summary.InProgress, dashboard.Summary.Blocked)
	return dashboard, nil
}

// runCase runs both phases for one patient, recovering panics and workflow
// errors into a synthetic blocked record.
func (c *Coordinator) runCase(ctx context.Context, entry models.RosterEntry) (outcome caseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Log("case %s: recovered panic: %v", entry.PatientID, r)
			c.emit(Event{Type: EventCaseFailed, PatientID: entry.PatientID, Error: fmt.Errorf("panic: %v", r)})
			outcome = caseOutcome{readiness: c.syntheticBlocked(entry.PatientID, fmt.Sprintf("workflow panic: %v", r))}
		}
	}()

	c.emit(Event{Type: EventCaseStarted, PatientID: entry.PatientID, Message: entry.CaseLabel})
	start := c.now()

	readiness, err := c.workflow.Run(ctx, entry.PatientID)
	if err != nil {
		c.logger.Log("case %s: workflow failed: %v", entry.PatientID, err)
		c.emit(Event{Type: EventCaseFailed, PatientID: entry.PatientID, Error: err})
		return caseOutcome{readiness: c.syntheticBlocked(entry.PatientID, err.Error())}
	}

	c.logger.Log("case %s: %s in %s", entry.PatientID, readiness.Status, time.Since(start).Round(time.Millisecond))
	c.emit(Event{Type: EventCaseCompleted, PatientID: entry.PatientID, Status: readiness.Status})

	outcome = caseOutcome{readiness: readiness}
	if c.pipeline != nil && readiness.GenomicsEligible() {
		c.emit(Event{Type: EventGenomicsStarted, PatientID: entry.PatientID})
		report := c.pipeline.Run(ctx, entry.PatientID,
			readiness.Item(models.DomainGenomics).Chosen.Genomics, clinicalContext(readiness))
		outcome.report = &report
		c.emit(Event{Type: EventGenomicsCompleted, PatientID: entry.PatientID})
	}
	return outcome
}

// clinicalContext extracts the Phase-2 conditioning facts from the verdict.
func clinicalContext(readiness models.CaseReadiness) genomics.ClinicalContext {
	cc := genomics.ClinicalContext{CancerType: "breast cancer"}
	if item := readiness.Item(models.DomainClinicalNotes); item != nil && item.Chosen != nil && item.Chosen.Clinical != nil {
		cc.Diagnosis = item.Chosen.Clinical.Diagnosis
		cc.Stage = item.Chosen.Clinical.Stage
		cc.ReceptorStatus = item.Chosen.Clinical.ReceptorStatus
	}
	return cc
}

// syntheticBlocked builds the replacement record for a patient whose workflow
// could not produce a verdict.
func (c *Coordinator) syntheticBlocked(patientID, reason string) models.CaseReadiness {
	readiness := models.CaseReadiness{
		PatientID:   patientID,
		Status:      models.StatusBlocked,
		GeneratedAt: c.now(),
		Summary:     "Case preparation failed; see blocker.",
	}
	for _, tag := range models.DomainOrder() {
		readiness.Checklist = append(readiness.Checklist, models.ChecklistItem{
			Domain: tag,
			Status: models.ItemFoundInvalid,
			Note:   "orchestration failure",
		})
	}
	readiness.Blockers = []models.Blocker{{
		ID:              c.newID(),
		Domain:          models.DomainClinicalNotes,
		Severity:        models.SeverityHigh,
		Description:     fmt.Sprintf("Case preparation could not complete: %s.", reason),
		SuggestedAction: "Investigate the orchestration failure and re-run this patient.",
	}}
	return readiness
}

// assemble builds the dashboard from the collected outcomes.
func (c *Coordinator) assemble(runID string, roster *models.Roster, outcomes map[string]caseOutcome) models.Dashboard {
	dashboard := models.Dashboard{
		RunID:       runID,
		GeneratedAt: c.now(),
		Meeting:     roster.Meeting,
		Patients:    make(map[string]models.CaseReadiness, len(roster.Patients)),
		Genomics:    make(map[string]models.GenomicsReport),
	}

	for _, entry := range roster.Patients {
		outcome, ok := outcomes[entry.PatientID]
		if !ok {
			// Should be unreachable; keep the completeness guarantee anyway.
			outcome = caseOutcome{readiness: c.syntheticBlocked(entry.PatientID, "no outcome recorded")}
		}
		dashboard.Patients[entry.PatientID] = outcome.readiness
		if outcome.report != nil {
			dashboard.Genomics[entry.PatientID] = *outcome.report
		}

		switch outcome.readiness.Status {
		case models.StatusReady:
			dashboard.Summary.Ready++
		case models.StatusInProgress:
			dashboard.Summary.InProgress++
		case models.StatusBlocked:
			dashboard.Summary.Blocked++
		}
		for _, b := range outcome.readiness.Blockers {
			dashboard.Blockers = append(dashboard.Blockers, models.DashboardBlocker{
				PatientID: entry.PatientID,
				Blocker:   b,
			})
		}
	}

	dashboard.Summary.TotalPatients = len(roster.Patients)
	dashboard.Summary.ReadinessPct = math.Round(float64(dashboard.Summary.Ready)/float64(dashboard.Summary.TotalPatients)*1000) / 10

	sort.SliceStable(dashboard.Blockers, func(i, j int) bool {
		return severityRank(dashboard.Blockers[i].Severity) < severityRank(dashboard.Blockers[j].Severity)
	})

	return dashboard
}

// severityRank orders blockers for triage; lower is more urgent.
func severityRank(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 0
	case models.SeverityHigh:
		return 1
	case models.SeverityModerate:
		return 2
	case models.SeverityDataUnavailable:
		return 3
	default:
		return 4
	}
}

func (c *Coordinator) emit(event Event) {
	if c.emitter != nil {
		c.emitter.Emit(event)
	}
}
