// Package synthesis converts a squad result set into a case readiness
// verdict: one checklist item per domain, deterministically derived blockers,
// and the overall status. Selection among competing signed reports follows
// recency first, then a per-domain subtype precedence table; a tie that
// survives both is escalated as a blocker, never resolved by arbitrary pick.
package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faithogundimu/core/internal/fetch"
	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/internal/squad"
	"github.com/faithogundimu/core/pkg/models"
)

// pathologyPrecedence ranks report subtypes by clinical definitiveness. Used
// only to break exact recency ties.
var pathologyPrecedence = map[string]int{
	"resection": 4,
	"excision":  3,
	"biopsy":    2,
	"cytology":  1,
}

// radiologyPrecedence ranks imaging modalities the same way.
var radiologyPrecedence = map[string]int{
	"PET-CT": 5,
	"MRI":    4,
	"CT":     3,
	"US":     2,
	"XR":     1,
}

// Synthesizer builds CaseReadiness values. The reasoner is optional; without
// one the readiness summary is assembled from the checklist directly.
type Synthesizer struct {
	reasoner reason.Reasoner
	logf     func(format string, args ...any)
	now      func() time.Time
	newID    func() string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithReasoner enables reasoned case summaries.
func WithReasoner(r reason.Reasoner) Option {
	return func(s *Synthesizer) { s.reasoner = r }
}

// WithLogf directs synthesis debug output.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Synthesizer) { s.logf = logf }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// New builds a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		logf:  func(string, ...any) {},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize derives the readiness verdict for one patient from the squad's
// five-slot result set.
func (s *Synthesizer) Synthesize(ctx context.Context, patientID string, results squad.ResultSet) models.CaseReadiness {
	readiness := models.CaseReadiness{
		PatientID:   patientID,
		GeneratedAt: s.now(),
	}

	for _, tag := range models.DomainOrder() {
		item, blockers := s.deriveItem(tag, results[tag])
		readiness.Checklist = append(readiness.Checklist, item)
		readiness.Blockers = append(readiness.Blockers, blockers...)
	}

	if b := s.orderTestingBlocker(readiness, results); b != nil {
		readiness.Blockers = append(readiness.Blockers, *b)
	}
	readiness.Blockers = append(readiness.Blockers, s.safetyBlockers(readiness)...)

	validated := 0
	for _, item := range readiness.Checklist {
		if item.Status == models.ItemFoundValidated {
			validated++
		}
	}
	readiness.Completeness = float64(validated) / float64(len(readiness.Checklist))

	switch {
	case len(readiness.Blockers) > 0:
		readiness.Status = models.StatusBlocked
	case validated == len(readiness.Checklist):
		readiness.Status = models.StatusReady
	default:
		readiness.Status = models.StatusInProgress
	}

	readiness.Summary = s.summarize(ctx, readiness)

	s.logf("synthesis: %s status=%s completeness=%.2f blockers=%d",
		patientID, readiness.Status, readiness.Completeness, len(readiness.Blockers))
	return readiness
}

// deriveItem builds the checklist item and its per-domain blockers for one
// result slot.
func (s *Synthesizer) deriveItem(tag models.DomainTag, result fetch.Result) (models.ChecklistItem, []models.Blocker) {
	item := models.ChecklistItem{Domain: tag}

	if result.Err != nil {
		item.Status = models.ItemFoundInvalid
		item.Note = fmt.Sprintf("source failure: %v", result.Err)
		return item, []models.Blocker{{
			ID:              s.newID(),
			Domain:          tag,
			Severity:        models.SeverityDataUnavailable,
			Description:     fmt.Sprintf("The %s source was reachable but failed: %v.", tag, result.Err.Err),
			SuggestedAction: fmt.Sprintf("Check the %s system and re-run the case.", tag),
		}}
	}

	if result.NotFound || len(result.Records) == 0 {
		item.Status = models.ItemNotFound
		item.Note = result.NotFoundReason
		if item.Note == "" {
			item.Note = fmt.Sprintf("no %s record on file", tag)
		}
		return item, nil
	}

	switch tag {
	case models.DomainPathology, models.DomainRadiology:
		return s.selectSigned(tag, result.Records)
	default:
		record := result.Records[0]
		item.Status = models.ItemFoundValidated
		item.Chosen = &record
		return item, nil
	}
}

// selectSigned applies the conflict resolution policy for the multi-record
// signed domains.
func (s *Synthesizer) selectSigned(tag models.DomainTag, records []models.DomainRecord) (models.ChecklistItem, []models.Blocker) {
	item := models.ChecklistItem{Domain: tag}

	var signed, drafts []models.DomainRecord
	for _, r := range records {
		if r.Signed == models.StatusSigned {
			signed = append(signed, r)
		} else {
			drafts = append(drafts, r)
		}
	}

	if len(signed) == 0 {
		sort.SliceStable(drafts, func(i, j int) bool {
			if !drafts[i].ReportedAt.Equal(drafts[j].ReportedAt) {
				return drafts[i].ReportedAt.After(drafts[j].ReportedAt)
			}
			return subtypeRank(tag, drafts[i].Subtype) > subtypeRank(tag, drafts[j].Subtype)
		})
		// The newest draft is kept on the item; the invalid status and the
		// blocker record that it is unusable until signed.
		item.Status = models.ItemFoundInvalid
		item.Chosen = &drafts[0]
		item.Note = fmt.Sprintf("%d record(s) on file, none signed", len(drafts))
		return item, []models.Blocker{{
			ID:              s.newID(),
			Domain:          tag,
			Severity:        models.SeverityHigh,
			Description:     fmt.Sprintf("All %s reports for this patient are unsigned drafts.", tag),
			SuggestedAction: fmt.Sprintf("Request signature on the outstanding %s report.", tag),
		}}
	}

	sort.SliceStable(signed, func(i, j int) bool {
		if !signed[i].ReportedAt.Equal(signed[j].ReportedAt) {
			return signed[i].ReportedAt.After(signed[j].ReportedAt)
		}
		return subtypeRank(tag, signed[i].Subtype) > subtypeRank(tag, signed[j].Subtype)
	})

	chosen := signed[0]
	if len(signed) > 1 {
		next := signed[1]
		if chosen.ReportedAt.Equal(next.ReportedAt) && subtypeRank(tag, chosen.Subtype) == subtypeRank(tag, next.Subtype) {
			item.Status = models.ItemFoundInvalid
			item.Note = fmt.Sprintf("two signed %s reports dated %s with no subtype precedence", tag, chosen.ReportedAt.Format("2006-01-02"))
			return item, []models.Blocker{{
				ID:              s.newID(),
				Domain:          tag,
				Severity:        models.SeverityHigh,
				Description:     fmt.Sprintf("Two signed %s reports share the same date and subtype; the system cannot pick one.", tag),
				SuggestedAction: fmt.Sprintf("Have the %s team confirm which report is authoritative.", tag),
			}}
		}
	}

	item.Status = models.ItemFoundValidated
	item.Chosen = &chosen

	var notes []string
	var blockers []models.Blocker
	for _, d := range drafts {
		if d.ReportedAt.After(chosen.ReportedAt) {
			notes = append(notes, fmt.Sprintf("newer draft %s dated %s outstanding", d.Subtype, d.ReportedAt.Format("2006-01-02")))
			blockers = append(blockers, models.Blocker{
				ID:              s.newID(),
				Domain:          tag,
				Severity:        models.SeverityModerate,
				Description:     fmt.Sprintf("A %s %s report newer than the signed one is still in draft.", tag, d.Subtype),
				SuggestedAction: fmt.Sprintf("Request signature on the draft %s report dated %s.", d.Subtype, d.ReportedAt.Format("2006-01-02")),
			})
		} else {
			notes = append(notes, fmt.Sprintf("older draft %s superseded", d.Subtype))
		}
	}
	if len(signed) > 1 {
		notes = append(notes, fmt.Sprintf("%d older signed report(s) superseded", len(signed)-1))
	}
	item.Note = strings.Join(notes, "; ")

	return item, blockers
}

// subtypeRank returns the precedence of a record subtype within its domain.
// Unknown subtypes rank lowest.
func subtypeRank(tag models.DomainTag, subtype string) int {
	switch tag {
	case models.DomainPathology:
		return pathologyPrecedence[strings.ToLower(subtype)]
	case models.DomainRadiology:
		return radiologyPrecedence[strings.ToUpper(subtype)]
	default:
		return 0
	}
}

// orderTestingBlocker raises the missing-genomics blocker when the tumor
// subtype clinically requires biomarker data.
func (s *Synthesizer) orderTestingBlocker(readiness models.CaseReadiness, results squad.ResultSet) *models.Blocker {
	item := readiness.Item(models.DomainGenomics)
	if item == nil || item.Status != models.ItemNotFound {
		return nil
	}
	if !biomarkerRequired(readiness) {
		return nil
	}

	action := "Order genomic testing (NGS panel) before the MDT discussion."
	if advice := results[models.DomainGenomics].NotFoundAdvice; advice != "" {
		action = advice
	}
	return &models.Blocker{
		ID:              s.newID(),
		Domain:          models.DomainGenomics,
		Severity:        models.SeverityHigh,
		Description:     "No genomic profile exists for a tumor subtype that requires biomarker data.",
		SuggestedAction: action,
	}
}

// biomarkerRequired reports whether the case's tumor subtype requires genomic
// biomarker data, checked against the clinical notes and the chosen pathology
// record.
func biomarkerRequired(readiness models.CaseReadiness) bool {
	if item := readiness.Item(models.DomainClinicalNotes); item != nil && item.Chosen != nil && item.Chosen.Clinical != nil {
		c := item.Chosen.Clinical
		if tripleNegative(c.ReceptorStatus) || strings.Contains(strings.ToLower(c.Diagnosis), "triple-negative") {
			return true
		}
	}
	if item := readiness.Item(models.DomainPathology); item != nil && item.Chosen != nil {
		f := item.Chosen.Fields
		if negative(f["er_status"]) && negative(f["pr_status"]) && negative(f["her2_status"]) {
			return true
		}
	}
	return false
}

func tripleNegative(receptors string) bool {
	r := strings.ToUpper(receptors)
	return strings.Contains(r, "ER-") && strings.Contains(r, "PR-") && strings.Contains(r, "HER2-")
}

func negative(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "negative" || s == "-"
}

// safetyBlockers cross-checks organ-function labs against the patient's
// contraindication rules. These blockers fire independent of checklist
// completeness.
func (s *Synthesizer) safetyBlockers(readiness models.CaseReadiness) []models.Blocker {
	clinical := readiness.Item(models.DomainClinicalNotes)
	rules := readiness.Item(models.DomainContraindications)
	if clinical == nil || clinical.Chosen == nil || clinical.Chosen.Clinical == nil {
		return nil
	}
	if rules == nil || rules.Chosen == nil {
		return nil
	}

	labs := clinical.Chosen.Clinical.Labs
	var blockers []models.Blocker
	for _, rule := range rules.Chosen.Rules {
		if rule.MinClearanceMLMin > 0 && labs.CreatinineClearanceMLMin > 0 && labs.CreatinineClearanceMLMin < rule.MinClearanceMLMin {
			blockers = append(blockers, models.Blocker{
				ID:       s.newID(),
				Domain:   models.DomainClinicalNotes,
				Severity: models.SeverityCritical,
				Description: fmt.Sprintf("Creatinine clearance %.1f mL/min is below the %.0f mL/min threshold for %s (%s).",
					labs.CreatinineClearanceMLMin, rule.MinClearanceMLMin, rule.DrugClass, strings.Join(rule.Contraindications, ", ")),
				SuggestedAction: safetyAction(rule),
			})
		}
		if rule.MinEjectionFractionPct > 0 && labs.EjectionFractionPct > 0 && labs.EjectionFractionPct < rule.MinEjectionFractionPct {
			blockers = append(blockers, models.Blocker{
				ID:       s.newID(),
				Domain:   models.DomainClinicalNotes,
				Severity: models.SeverityCritical,
				Description: fmt.Sprintf("Ejection fraction %.0f%% is below the %.0f%% threshold for %s (%s).",
					labs.EjectionFractionPct, rule.MinEjectionFractionPct, rule.DrugClass, strings.Join(rule.Contraindications, ", ")),
				SuggestedAction: safetyAction(rule),
			})
		}
	}
	return blockers
}

func safetyAction(rule models.ContraindicationRule) string {
	if rule.DoseAdjustment != "" {
		return rule.DoseAdjustment
	}
	return fmt.Sprintf("Flag %s contraindication for MDT discussion before treatment planning.", rule.DrugClass)
}

// summarize produces the one-line case summary, via the reasoner when one is
// configured.
func (s *Synthesizer) summarize(ctx context.Context, readiness models.CaseReadiness) string {
	fallback := fmt.Sprintf("%s: %d/%d checklist items validated, %d blocker(s).",
		readiness.Status, int(readiness.Completeness*float64(len(readiness.Checklist))+0.5),
		len(readiness.Checklist), len(readiness.Blockers))

	if s.reasoner == nil {
		return fallback
	}

	reqCtx := map[string]any{
		"overall_status": string(readiness.Status),
		"completeness":   readiness.Completeness,
	}
	for _, item := range readiness.Checklist {
		reqCtx["item_"+string(item.Domain)] = string(item.Status)
	}
	var descriptions []string
	for _, b := range readiness.Blockers {
		descriptions = append(descriptions, b.Description)
	}
	if len(descriptions) > 0 {
		reqCtx["blockers"] = strings.Join(descriptions, " ")
	}

	result, err := s.reasoner.Reason(ctx, reason.Request{
		Task:      reason.TaskCaseSummary,
		PatientID: readiness.PatientID,
		Context:   reqCtx,
	})
	if err != nil {
		s.logf("synthesis: case summary for %s fell back to template: %v", readiness.PatientID, err)
		return fallback
	}
	return strings.TrimSpace(result.Text)
}
