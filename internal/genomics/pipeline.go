// Package genomics runs the sequential intelligence pipeline for patients
// with mutation data: interpret each mutation, match recruiting trials,
// gather literature evidence, then synthesize a report. Stages run strictly
// in order; each consumes the previous stage's output type. Interpreter
// failure is fatal to the patient's report, trial and evidence failures
// degrade to empty sets.
package genomics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/pkg/models"
)

// Pipeline owns the stage dependencies for one deployment.
type Pipeline struct {
	reasoner     reason.Reasoner
	trials       TrialSearcher
	literature   LiteratureSearcher
	maxTrials    int
	stageTimeout time.Duration
	logf         func(format string, args ...any)
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxTrials bounds the trial set kept per patient.
func WithMaxTrials(n int) Option {
	return func(p *Pipeline) { p.maxTrials = n }
}

// WithStageTimeout bounds each stage's wall time.
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.stageTimeout = d }
}

// WithLogf directs pipeline debug output.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(p *Pipeline) { p.logf = logf }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a Pipeline. All three collaborators are required.
func New(r reason.Reasoner, t TrialSearcher, l LiteratureSearcher, opts ...Option) (*Pipeline, error) {
	if r == nil || t == nil || l == nil {
		return nil, fmt.Errorf("pipeline requires reasoner, trial searcher and literature searcher")
	}

	p := &Pipeline{
		reasoner:     r,
		trials:       t,
		literature:   l,
		maxTrials:    5,
		stageTimeout: time.Minute,
		logf:         func(string, ...any) {},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the four stages for one patient. The returned report is always
// usable; interpreter failure yields a failed-report marker rather than an
// error so the coordinator can still render the patient.
func (p *Pipeline) Run(ctx context.Context, patientID string, profile *models.GenomicsProfile, clinical ClinicalContext) models.GenomicsReport {
	if profile == nil || len(profile.Mutations) == 0 {
		return p.failedReport(patientID, "no mutation data to interpret")
	}

	interpreted, err := p.stage1(ctx, patientID, profile, clinical)
	if err != nil {
		p.logf("genomics: report for %s failed at interpretation: %v", patientID, err)
		return p.failedReport(patientID, err.Error())
	}

	matched := p.stage2(ctx, interpreted)
	evidence := p.stage3(ctx, matched)
	return p.synthesize(ctx, evidence)
}

func (p *Pipeline) stage1(ctx context.Context, patientID string, profile *models.GenomicsProfile, clinical ClinicalContext) (Interpretation, error) {
	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.interpret(sctx, patientID, profile, clinical)
}

func (p *Pipeline) stage2(ctx context.Context, in Interpretation) TrialSet {
	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.matchTrials(sctx, in)
}

func (p *Pipeline) stage3(ctx context.Context, in TrialSet) EvidenceSet {
	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.searchEvidence(sctx, in)
}

func (p *Pipeline) failedReport(patientID, reason string) models.GenomicsReport {
	return models.GenomicsReport{
		PatientID:     patientID,
		Failed:        true,
		FailureReason: reason,
		GeneratedAt:   p.now(),
	}
}

// evidenceLevel maps a finding plus its citation support to a categorical
// level. Level 1 is an approved first-tier therapy with published support.
func evidenceLevel(f models.MutationFinding, cited bool) string {
	switch {
	case f.ApprovedTherapy != "" && f.ActionabilityTier == "Tier 1" && cited:
		return "Level 1"
	case f.ApprovedTherapy != "" && f.ActionabilityTier == "Tier 1":
		return "Level 2"
	case f.ApprovedTherapy != "":
		return "Level 3"
	default:
		return "Level 4"
	}
}

// synthesize is the final stage: ranked recommendations, next steps and the
// executive summary.
func (p *Pipeline) synthesize(ctx context.Context, in EvidenceSet) models.GenomicsReport {
	report := models.GenomicsReport{
		PatientID:   in.PatientID,
		Mutations:   in.Findings,
		Trials:      in.Trials,
		Evidence:    in.Citations,
		GeneratedAt: p.now(),
	}

	citationsByTherapy := make(map[string][]string)
	for _, c := range in.Citations {
		if c.Therapy != "" {
			citationsByTherapy[c.Therapy] = append(citationsByTherapy[c.Therapy], c.PMID)
		}
	}
	trialsByGene := make(map[string][]string)
	for _, t := range in.Trials {
		trialsByGene[t.TargetGene] = append(trialsByGene[t.TargetGene], t.NCTID)
	}

	for _, f := range in.Findings {
		if f.ApprovedTherapy == "" {
			continue
		}
		pmids := citationsByTherapy[f.ApprovedTherapy]
		report.Recommendations = append(report.Recommendations, models.Recommendation{
			Therapy:       f.ApprovedTherapy,
			Indication:    fmt.Sprintf("%s %s (%s)", f.Mutation.Gene, f.Mutation.Variant, f.Significance),
			EvidenceLevel: evidenceLevel(f, len(pmids) > 0),
			CitationIDs:   pmids,
			TrialIDs:      trialsByGene[strings.ToUpper(f.Mutation.Gene)],
		})
	}

	sort.SliceStable(report.Recommendations, func(i, j int) bool {
		if report.Recommendations[i].EvidenceLevel != report.Recommendations[j].EvidenceLevel {
			return report.Recommendations[i].EvidenceLevel < report.Recommendations[j].EvidenceLevel
		}
		return report.Recommendations[i].Therapy < report.Recommendations[j].Therapy
	})
	for i := range report.Recommendations {
		report.Recommendations[i].Priority = i + 1
	}

	report.NextSteps = p.nextSteps(in, report)
	report.ExecutiveSummary = p.executiveSummary(ctx, report)

	p.logf("genomics: report for %s: %d finding(s), %d recommendation(s), %d trial(s)",
		in.PatientID, len(report.Mutations), len(report.Recommendations), len(report.Trials))
	return report
}

// nextSteps derives the ordered clinical action list from the report content.
func (p *Pipeline) nextSteps(in EvidenceSet, report models.GenomicsReport) []string {
	var steps []string
	if len(report.Recommendations) > 0 {
		top := report.Recommendations[0]
		steps = append(steps, fmt.Sprintf("Discuss %s (%s) as the leading targeted option at MDT.", top.Therapy, top.EvidenceLevel))
	}
	if len(report.Trials) > 0 {
		steps = append(steps, fmt.Sprintf("Screen eligibility for %s (%s).", report.Trials[0].NCTID, report.Trials[0].Title))
	} else if in.TrialsDegraded {
		steps = append(steps, "Re-run trial matching; the registry was unavailable during this run.")
	}
	if in.EvidenceDegraded {
		steps = append(steps, "Re-run the literature search; the index was unavailable during this run.")
	}
	if len(steps) == 0 {
		steps = append(steps, "No targeted option identified; proceed with standard-of-care discussion.")
	}
	return steps
}

// executiveSummary asks the reasoner for a short narrative; on failure the
// summary is assembled from the report directly.
func (p *Pipeline) executiveSummary(ctx context.Context, report models.GenomicsReport) string {
	var therapies []string
	for _, r := range report.Recommendations {
		therapies = append(therapies, fmt.Sprintf("%s (%s)", r.Therapy, r.EvidenceLevel))
	}
	fallback := fmt.Sprintf("%d mutation(s) interpreted; %d targeted option(s); %d recruiting trial(s).",
		len(report.Mutations), len(report.Recommendations), len(report.Trials))

	var genes []string
	for _, f := range report.Mutations {
		genes = append(genes, f.Mutation.Gene+" "+f.Mutation.Variant)
	}

	result, err := p.reasoner.Reason(ctx, reason.Request{
		Task:      reason.TaskReportSummary,
		PatientID: report.PatientID,
		Context: map[string]any{
			"mutations":   strings.Join(genes, ", "),
			"therapies":   strings.Join(therapies, ", "),
			"trial_count": len(report.Trials),
		},
	})
	if err != nil {
		p.logf("genomics: executive summary for %s fell back to template: %v", report.PatientID, err)
		return fallback
	}
	return strings.TrimSpace(result.Text)
}
