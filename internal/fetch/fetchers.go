package fetch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/faithogundimu/core/internal/source"
	"github.com/faithogundimu/core/pkg/models"
)

// PathologySource is the query contract required of the pathology store.
type PathologySource interface {
	Reports(ctx context.Context, patientID string) ([]source.PathologyReport, error)
}

// RadiologySource is the query contract required of the radiology log.
type RadiologySource interface {
	Scans(ctx context.Context, patientID string) ([]source.RadiologyScan, error)
}

// ClinicalSource is the query contract required of the clinical-notes store.
type ClinicalSource interface {
	Notes(ctx context.Context, patientID string) (*models.ClinicalSummary, bool, error)
}

// GenomicsSource is the query contract required of the genomics registry.
type GenomicsSource interface {
	Profile(ctx context.Context, patientID string) (*models.GenomicsProfile, *source.GenomicsNotFound, error)
}

// RuleSource is the query contract required of the contraindication rule book.
type RuleSource interface {
	Rules(ctx context.Context) ([]models.ContraindicationRule, error)
}

// PathologyFetcher normalizes pathology reports into domain records.
type PathologyFetcher struct {
	Store PathologySource
}

var _ Fetcher = (*PathologyFetcher)(nil)

// Domain implements Fetcher.
func (f *PathologyFetcher) Domain() models.DomainTag { return models.DomainPathology }

// Fetch implements Fetcher.
func (f *PathologyFetcher) Fetch(ctx context.Context, patientID string) (Result, error) {
	reports, err := f.Store.Reports(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	if len(reports) == 0 {
		return Result{Domain: f.Domain(), NotFound: true, NotFoundReason: "no pathology report on file"}, nil
	}

	result := Result{Domain: f.Domain()}
	for _, r := range reports {
		signed, err := parseSignedStatus(r.SignedStatus)
		if err != nil {
			return Result{}, fmt.Errorf("report for %s dated %s: %w", patientID, r.ReportDate.Format("2006-01-02"), err)
		}
		result.Records = append(result.Records, models.DomainRecord{
			PatientID:  patientID,
			Domain:     f.Domain(),
			Subtype:    r.ReportType,
			Signed:     signed,
			SignedBy:   r.SignedBy,
			ReportedAt: r.ReportDate,
			Fields: map[string]string{
				"diagnosis":         r.Diagnosis,
				"histological_type": r.HistologicalType,
				"grade":             r.Grade,
				"er_status":         r.ERStatus,
				"pr_status":         r.PRStatus,
				"her2_status":       r.HER2Status,
				"ki67_percentage":   strconv.FormatFloat(r.Ki67Percentage, 'f', 1, 64),
				"nodes_positive":    strconv.Itoa(r.NodesPositive),
				"nodes_examined":    strconv.Itoa(r.NodesExamined),
				"margins":           r.Margins,
			},
		})
	}
	return result, nil
}

// RadiologyFetcher normalizes radiology scans into domain records.
type RadiologyFetcher struct {
	Log RadiologySource
}

var _ Fetcher = (*RadiologyFetcher)(nil)

// Domain implements Fetcher.
func (f *RadiologyFetcher) Domain() models.DomainTag { return models.DomainRadiology }

// Fetch implements Fetcher.
func (f *RadiologyFetcher) Fetch(ctx context.Context, patientID string) (Result, error) {
	scans, err := f.Log.Scans(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	if len(scans) == 0 {
		return Result{Domain: f.Domain(), NotFound: true, NotFoundReason: "no radiology scan on file"}, nil
	}

	result := Result{Domain: f.Domain()}
	for _, s := range scans {
		signed, err := parseSignedStatus(s.ReportStatus)
		if err != nil {
			return Result{}, fmt.Errorf("scan for %s dated %s: %w", patientID, s.ScanDate.Format("2006-01-02"), err)
		}
		result.Records = append(result.Records, models.DomainRecord{
			PatientID:  patientID,
			Domain:     f.Domain(),
			Subtype:    s.Modality,
			Signed:     signed,
			SignedBy:   s.SignedBy,
			ReportedAt: s.ScanDate,
			Fields: map[string]string{
				"body_part": s.BodyPart,
				"findings":  s.Findings,
			},
		})
	}
	return result, nil
}

// ClinicalFetcher normalizes the clinical-notes entry into a domain record.
type ClinicalFetcher struct {
	Store ClinicalSource
}

var _ Fetcher = (*ClinicalFetcher)(nil)

// Domain implements Fetcher.
func (f *ClinicalFetcher) Domain() models.DomainTag { return models.DomainClinicalNotes }

// Fetch implements Fetcher.
func (f *ClinicalFetcher) Fetch(ctx context.Context, patientID string) (Result, error) {
	notes, found, err := f.Store.Notes(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Domain: f.Domain(), NotFound: true, NotFoundReason: "no clinical notes on file"}, nil
	}

	return Result{
		Domain: f.Domain(),
		Records: []models.DomainRecord{{
			PatientID: patientID,
			Domain:    f.Domain(),
			Clinical:  notes,
		}},
	}, nil
}

// GenomicsFetcher normalizes the genomic profile into a domain record.
type GenomicsFetcher struct {
	Registry GenomicsSource
}

var _ Fetcher = (*GenomicsFetcher)(nil)

// Domain implements Fetcher.
func (f *GenomicsFetcher) Domain() models.DomainTag { return models.DomainGenomics }

// Fetch implements Fetcher.
func (f *GenomicsFetcher) Fetch(ctx context.Context, patientID string) (Result, error) {
	profile, nf, err := f.Registry.Profile(ctx, patientID)
	if err != nil {
		return Result{}, err
	}
	if nf != nil {
		return Result{
			Domain:         f.Domain(),
			NotFound:       true,
			NotFoundReason: nf.Reason,
			NotFoundAdvice: nf.Recommendation,
		}, nil
	}

	return Result{
		Domain: f.Domain(),
		Records: []models.DomainRecord{{
			PatientID: patientID,
			Domain:    f.Domain(),
			Genomics:  profile,
		}},
	}, nil
}

// ContraindicationFetcher returns the safety rules applicable to the patient.
// The rule book is deployment-wide; an empty book is still a found result so
// the safety cross-check can run against zero rules.
type ContraindicationFetcher struct {
	Book RuleSource
}

var _ Fetcher = (*ContraindicationFetcher)(nil)

// Domain implements Fetcher.
func (f *ContraindicationFetcher) Domain() models.DomainTag { return models.DomainContraindications }

// Fetch implements Fetcher.
func (f *ContraindicationFetcher) Fetch(ctx context.Context, patientID string) (Result, error) {
	rules, err := f.Book.Rules(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Domain: f.Domain(),
		Records: []models.DomainRecord{{
			PatientID: patientID,
			Domain:    f.Domain(),
			Rules:     rules,
		}},
	}, nil
}

// parseSignedStatus validates a report status from a source row.
func parseSignedStatus(s string) (models.SignedStatus, error) {
	switch models.SignedStatus(s) {
	case models.StatusSigned, models.StatusDraft:
		return models.SignedStatus(s), nil
	default:
		return "", fmt.Errorf("malformed signed status %q", s)
	}
}
