package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/faithogundimu/core/pkg/models"
)

// priorityRank orders roster entries for discussion; lower is earlier.
var priorityRank = map[models.Priority]int{
	models.PriorityUrgent:  0,
	models.PriorityHigh:    1,
	models.PriorityRoutine: 2,
}

// LoadRoster reads and validates the roster file. Entries without a priority
// default to routine; the returned roster is ordered urgent-first with the
// file order preserved within each priority.
func LoadRoster(path string) (*models.Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster models.Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(roster.Patients) == 0 {
		return nil, fmt.Errorf("roster %s has no patients", path)
	}

	seen := make(map[string]bool, len(roster.Patients))
	for i := range roster.Patients {
		p := &roster.Patients[i]
		if p.PatientID == "" {
			return nil, fmt.Errorf("roster entry %d has no patient_id", i)
		}
		if seen[p.PatientID] {
			return nil, fmt.Errorf("duplicate roster entry for patient %s", p.PatientID)
		}
		seen[p.PatientID] = true

		if p.Priority == "" {
			p.Priority = models.PriorityRoutine
		}
		if !p.Priority.Valid() {
			return nil, fmt.Errorf("roster entry %s has unknown priority %q", p.PatientID, p.Priority)
		}
	}

	sort.SliceStable(roster.Patients, func(i, j int) bool {
		return priorityRank[roster.Patients[i].Priority] < priorityRank[roster.Patients[j].Priority]
	})

	return &roster, nil
}
