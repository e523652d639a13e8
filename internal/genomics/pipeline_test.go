package genomics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faithogundimu/core/internal/pubmed"
	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/internal/trials"
	"github.com/faithogundimu/core/pkg/models"
)

type stubTrials struct {
	matches []models.TrialMatch
	err     error
	queries []trials.Query
}

func (s *stubTrials) Search(ctx context.Context, q trials.Query) ([]models.TrialMatch, error) {
	s.queries = append(s.queries, q)
	return s.matches, s.err
}

type stubLiterature struct {
	citations []models.Citation
	err       error
	queries   []pubmed.Query
}

func (s *stubLiterature) Search(ctx context.Context, q pubmed.Query) ([]models.Citation, error) {
	s.queries = append(s.queries, q)
	return s.citations, s.err
}

// recordingReasoner delegates to the rule reasoner while capturing requests.
type recordingReasoner struct {
	inner    reason.Reasoner
	requests []reason.Request
}

func (r *recordingReasoner) Reason(ctx context.Context, req reason.Request) (reason.Result, error) {
	r.requests = append(r.requests, req)
	return r.inner.Reason(ctx, req)
}

type failingReasoner struct{}

func (failingReasoner) Reason(ctx context.Context, req reason.Request) (reason.Result, error) {
	return reason.Result{}, errors.New("model unavailable")
}

func pik3caProfile() *models.GenomicsProfile {
	return &models.GenomicsProfile{
		Mutations: []models.MutationRecord{
			{Gene: "PIK3CA", Variant: "H1047R", Interpretation: "Pathogenic", Tier: "Tier 1", VAF: 34.2},
			{Gene: "TP53", Variant: "R273H", Interpretation: "Pathogenic", Tier: "Tier 3", VAF: 28.0},
		},
	}
}

func hrPositive() ClinicalContext {
	return ClinicalContext{
		Diagnosis:      "Invasive ductal carcinoma",
		Stage:          "IIA",
		ReceptorStatus: "ER+/PR+/HER2-",
		CancerType:     "breast cancer",
	}
}

func newPipeline(t *testing.T, tr TrialSearcher, lit LiteratureSearcher, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(reason.NewRuleReasoner(), tr, lit, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestRun_FullPipeline(t *testing.T) {
	tr := &stubTrials{matches: []models.TrialMatch{
		{NCTID: "NCT01", Title: "Phase 2 study", Phase: "PHASE2", Status: "RECRUITING", TargetGene: "PIK3CA",
			StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{NCTID: "NCT02", Title: "Phase 3 study", Phase: "PHASE3", Status: "RECRUITING", TargetGene: "PIK3CA",
			StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	lit := &stubLiterature{citations: []models.Citation{
		{PMID: "38012345", Title: "Alpelisib trial results", Gene: "PIK3CA", Therapy: "Alpelisib + fulvestrant"},
	}}

	report := newPipeline(t, tr, lit).Run(context.Background(), "123", pik3caProfile(), hrPositive())

	if report.Failed {
		t.Fatalf("report failed: %s", report.FailureReason)
	}
	if len(report.Mutations) != 2 {
		t.Fatalf("got %d findings, want 2", len(report.Mutations))
	}
	if report.Mutations[0].ApprovedTherapy != "Alpelisib + fulvestrant" {
		t.Errorf("PIK3CA therapy = %q, want alpelisib match", report.Mutations[0].ApprovedTherapy)
	}

	// Only the actionable PIK3CA finding drives trial matching; TP53 Tier 3
	// has no therapy.
	if len(tr.queries) != 1 || tr.queries[0].Gene != "PIK3CA" {
		t.Errorf("trial queries = %+v, want one PIK3CA query", tr.queries)
	}
	if len(lit.queries) != 1 || lit.queries[0].Therapy != "Alpelisib + fulvestrant" {
		t.Errorf("literature queries = %+v, want one therapy-bearing query", lit.queries)
	}

	if len(report.Trials) != 2 || report.Trials[0].NCTID != "NCT02" {
		t.Errorf("trials = %+v, want phase 3 ranked first", report.Trials)
	}

	if len(report.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(report.Recommendations))
	}
	rec := report.Recommendations[0]
	if rec.Priority != 1 || rec.Therapy != "Alpelisib + fulvestrant" {
		t.Errorf("top recommendation = %+v, want priority-1 alpelisib", rec)
	}
	if rec.EvidenceLevel != "Level 1" {
		t.Errorf("evidence level = %q, want Level 1 with citation support", rec.EvidenceLevel)
	}
	if len(rec.CitationIDs) != 1 || rec.CitationIDs[0] != "38012345" {
		t.Errorf("citation IDs = %v, want the supporting PMID", rec.CitationIDs)
	}
	if len(rec.TrialIDs) != 2 {
		t.Errorf("trial IDs = %v, want both matched trials", rec.TrialIDs)
	}

	if len(report.NextSteps) == 0 {
		t.Error("report has no next steps")
	}
	if report.ExecutiveSummary == "" {
		t.Error("report has no executive summary")
	}
}

func TestRun_InterpreterReceivesClinicalContext(t *testing.T) {
	rec := &recordingReasoner{inner: reason.NewRuleReasoner()}
	p, err := New(rec, &stubTrials{}, &stubLiterature{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p.Run(context.Background(), "123", pik3caProfile(), hrPositive())

	var interprets []reason.Request
	for _, req := range rec.requests {
		if req.Task == reason.TaskInterpretMutation {
			interprets = append(interprets, req)
		}
	}
	if len(interprets) != 2 {
		t.Fatalf("got %d interpret requests, want one per mutation", len(interprets))
	}
	for _, req := range interprets {
		for key, want := range map[string]any{
			"cancer_type":     "breast cancer",
			"diagnosis":       "Invasive ductal carcinoma",
			"receptor_status": "ER+/PR+/HER2-",
		} {
			if got := req.Context[key]; got != want {
				t.Errorf("interpret context[%q] = %v, want %v", key, got, want)
			}
		}
	}
}

func TestRun_InterpreterFailureIsFatal(t *testing.T) {
	tr := &stubTrials{}
	lit := &stubLiterature{}
	p, err := New(failingReasoner{}, tr, lit)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report := p.Run(context.Background(), "123", pik3caProfile(), hrPositive())

	if !report.Failed || report.FailureReason == "" {
		t.Fatalf("report = %+v, want failed marker with reason", report)
	}
	if len(report.Mutations) != 0 || len(report.Recommendations) != 0 {
		t.Error("failed report carries partial findings")
	}
	if len(tr.queries) != 0 {
		t.Error("trial matcher ran after a fatal interpretation failure")
	}
}

func TestRun_TrialTimeoutDegradesToEmpty(t *testing.T) {
	tr := &stubTrials{err: context.DeadlineExceeded}
	lit := &stubLiterature{citations: []models.Citation{
		{PMID: "38012345", Title: "Alpelisib trial results", Therapy: "Alpelisib + fulvestrant"},
	}}

	report := newPipeline(t, tr, lit).Run(context.Background(), "123", pik3caProfile(), hrPositive())

	if report.Failed {
		t.Fatalf("report failed on trial timeout: %s", report.FailureReason)
	}
	if len(report.Trials) != 0 {
		t.Errorf("trials = %+v, want empty on registry timeout", report.Trials)
	}
	if len(report.Mutations) != 2 {
		t.Errorf("got %d findings, want interpretation preserved", len(report.Mutations))
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("got %d recommendations, want therapy recommendation preserved", len(report.Recommendations))
	}
}

func TestRun_EvidenceFailureDegradesToEmpty(t *testing.T) {
	tr := &stubTrials{}
	lit := &stubLiterature{err: errors.New("rate limited")}

	report := newPipeline(t, tr, lit).Run(context.Background(), "123", pik3caProfile(), hrPositive())

	if report.Failed {
		t.Fatalf("report failed on literature error: %s", report.FailureReason)
	}
	if len(report.Evidence) != 0 {
		t.Errorf("evidence = %+v, want empty", report.Evidence)
	}
	if report.Recommendations[0].EvidenceLevel != "Level 2" {
		t.Errorf("evidence level = %q, want Level 2 without citation support", report.Recommendations[0].EvidenceLevel)
	}
}

func TestRun_NoMutations(t *testing.T) {
	report := newPipeline(t, &stubTrials{}, &stubLiterature{}).
		Run(context.Background(), "123", &models.GenomicsProfile{}, hrPositive())

	if !report.Failed {
		t.Error("report for empty profile not marked failed")
	}
}

func TestRun_MaxTrialsBound(t *testing.T) {
	var matches []models.TrialMatch
	for _, id := range []string{"NCT01", "NCT02", "NCT03", "NCT04"} {
		matches = append(matches, models.TrialMatch{NCTID: id, Phase: "PHASE2", TargetGene: "PIK3CA"})
	}
	tr := &stubTrials{matches: matches}

	report := newPipeline(t, tr, &stubLiterature{}, WithMaxTrials(2)).
		Run(context.Background(), "123", pik3caProfile(), hrPositive())

	if len(report.Trials) != 2 {
		t.Errorf("got %d trials, want bound of 2", len(report.Trials))
	}
}
