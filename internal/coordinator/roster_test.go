package coordinator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/faithogundimu/core/pkg/models"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing roster: %v", err)
	}
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, `{
		"mdt_info": {"meeting_date": "2026-09-04", "location": "Oncology Seminar Room", "specialty": "breast"},
		"patients": [
			{"patient_id": "101", "case_label": "new diagnosis", "discussion_minutes": 10, "priority": "routine"},
			{"patient_id": "102", "case_label": "progression on therapy", "discussion_minutes": 15, "priority": "urgent"},
			{"patient_id": "103", "case_label": "post-op review", "discussion_minutes": 5}
		]
	}`)

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}

	if roster.Meeting.Date != "2026-09-04" || roster.Meeting.Specialty != "breast" {
		t.Errorf("meeting = %+v, want parsed meeting info", roster.Meeting)
	}
	if len(roster.Patients) != 3 {
		t.Fatalf("got %d patients, want 3", len(roster.Patients))
	}
	if roster.Patients[0].PatientID != "102" {
		t.Errorf("first patient = %s, want urgent case ordered first", roster.Patients[0].PatientID)
	}
	if roster.Patients[2].Priority != models.PriorityRoutine {
		t.Errorf("missing priority = %q, want routine default", roster.Patients[2].Priority)
	}
}

func TestLoadRoster_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{broken`},
		{"no patients", `{"patients": []}`},
		{"missing patient id", `{"patients": [{"case_label": "x"}]}`},
		{"duplicate patient", `{"patients": [{"patient_id": "1"}, {"patient_id": "1"}]}`},
		{"unknown priority", `{"patients": [{"patient_id": "1", "priority": "asap"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRoster(writeRoster(t, tt.content)); err == nil {
				t.Error("LoadRoster() want error, got nil")
			}
		})
	}
}

func TestSaveDashboard_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	dashboard := models.Dashboard{
		RunID:   "run-1",
		Meeting: models.MeetingInfo{Date: "2026-09-04"},
		Summary: models.DashboardSummary{TotalPatients: 1, Ready: 1, ReadinessPct: 100},
		Patients: map[string]models.CaseReadiness{
			"101": {PatientID: "101", Status: models.StatusReady, Completeness: 1.0},
		},
	}

	path, err := SaveDashboard(dashboard, dir)
	if err != nil {
		t.Fatalf("SaveDashboard() error = %v", err)
	}

	loaded, err := LoadDashboard(path)
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if loaded.RunID != "run-1" || loaded.Patients["101"].Status != models.StatusReady {
		t.Errorf("loaded = %+v, want round-tripped dashboard", loaded)
	}

	if _, err := os.Stat(filepath.Join(dir, "dashboard_run-1.json")); err != nil {
		t.Errorf("run-stamped artifact missing: %v", err)
	}
}
