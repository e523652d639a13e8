package models

import "time"

// DashboardSummary is the roster-level rollup shown at the top of the board.
type DashboardSummary struct {
	TotalPatients int `json:"total_patients"`
	Ready         int `json:"ready"`
	InProgress    int `json:"in_progress"`
	Blocked       int `json:"blocked"`
	// ReadinessPct is ready/total as a percentage, one decimal.
	ReadinessPct float64 `json:"readiness_percentage"`
}

// DashboardBlocker is a blocker flattened with its patient for triage lists.
type DashboardBlocker struct {
	PatientID string `json:"patient_id"`
	Blocker
}

// Dashboard is the terminal artifact of one orchestration run. It contains
// exactly one readiness entry per roster patient; the coordinator never omits
// a patient, even on total workflow failure.
type Dashboard struct {
	// RunID identifies the orchestration run that produced the board.
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Meeting     MeetingInfo      `json:"mdt_info"`
	Summary     DashboardSummary `json:"summary"`
	// Patients maps patient ID to Phase-1 readiness.
	Patients map[string]CaseReadiness `json:"patients"`
	// Genomics maps patient ID to the Phase-2 report, eligible patients only.
	Genomics map[string]GenomicsReport `json:"genomics,omitempty"`
	// Blockers is the flattened cross-patient blocker list.
	Blockers []DashboardBlocker `json:"blockers"`
}
