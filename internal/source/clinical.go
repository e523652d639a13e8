package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/faithogundimu/core/pkg/models"
)

// ClinicalStore reads the JSON clinical-notes file. Entries are keyed by
// "patient_<id>" matching the EHR export format.
type ClinicalStore struct {
	path string
}

// NewClinicalStore creates a client for the store at path.
func NewClinicalStore(path string) *ClinicalStore {
	return &ClinicalStore{path: path}
}

// clinicalEntry mirrors the on-disk shape of one patient's notes.
type clinicalEntry struct {
	Demographics struct {
		Age              int    `json:"age"`
		Sex              string `json:"sex"`
		MenopausalStatus string `json:"menopausal_status"`
	} `json:"demographics"`
	Diagnosis struct {
		Primary   string `json:"primary"`
		Stage     string `json:"stage"`
		Receptors string `json:"receptors"`
	} `json:"diagnosis"`
	Comorbidities     []string `json:"comorbidities"`
	Medications       []string `json:"current_medications"`
	Allergies         []string `json:"allergies"`
	PerformanceStatus struct {
		ECOG int `json:"ecog"`
	} `json:"performance_status"`
	Labs struct {
		CreatinineClearance float64 `json:"creatinine_clearance_ml_min"`
		EjectionFraction    float64 `json:"ejection_fraction_pct"`
	} `json:"labs"`
}

// Notes returns the clinical summary for a patient. The second result is
// false when the store has no entry for the patient; that is a valid result,
// not an error.
func (s *ClinicalStore) Notes(ctx context.Context, patientID string) (*models.ClinicalSummary, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("read clinical notes: %w", err)
	}

	var entries map[string]clinicalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode clinical notes: %w", err)
	}

	entry, ok := entries["patient_"+patientID]
	if !ok {
		return nil, false, nil
	}

	return &models.ClinicalSummary{
		Age:              entry.Demographics.Age,
		Sex:              entry.Demographics.Sex,
		MenopausalStatus: entry.Demographics.MenopausalStatus,
		Diagnosis:        entry.Diagnosis.Primary,
		Stage:            entry.Diagnosis.Stage,
		ReceptorStatus:   entry.Diagnosis.Receptors,
		Comorbidities:    entry.Comorbidities,
		Medications:      entry.Medications,
		Allergies:        entry.Allergies,
		ECOG:             entry.PerformanceStatus.ECOG,
		Labs: models.LabPanel{
			CreatinineClearanceMLMin: entry.Labs.CreatinineClearance,
			EjectionFractionPct:      entry.Labs.EjectionFraction,
		},
	}, true, nil
}
