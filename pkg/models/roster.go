// Package models defines the shared data contracts for MDT case preparation.
// All types here are write-once: a component produces a value and no other
// component mutates it afterwards.
package models

// Priority indicates how urgently a case needs MDT discussion.
type Priority string

const (
	// PriorityUrgent cases are discussed first regardless of roster order.
	PriorityUrgent Priority = "urgent"
	// PriorityHigh cases have a clinical reason to be discussed early.
	PriorityHigh Priority = "high"
	// PriorityRoutine is the default priority.
	PriorityRoutine Priority = "routine"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityRoutine:
		return true
	default:
		return false
	}
}

// RosterEntry identifies one patient on the MDT roster.
type RosterEntry struct {
	// PatientID is the unique patient identifier used across all data sources.
	PatientID string `json:"patient_id"`
	// MRN is the medical record number, carried for display only.
	MRN string `json:"mrn,omitempty"`
	// CaseLabel is the short human-readable case description.
	CaseLabel string `json:"case_label"`
	// DiscussionMinutes is the scheduled discussion slot length.
	DiscussionMinutes int `json:"discussion_minutes"`
	// Priority is the case priority on the roster.
	Priority Priority `json:"priority"`
}

// MeetingInfo describes the MDT meeting the roster belongs to.
type MeetingInfo struct {
	// Date is the meeting date in YYYY-MM-DD form.
	Date string `json:"meeting_date"`
	// Location is the meeting location.
	Location string `json:"location,omitempty"`
	// Specialty is the tumor board specialty (e.g. "breast").
	Specialty string `json:"specialty,omitempty"`
}

// Roster is the full patient list for one MDT meeting. It is immutable once
// loaded and owned by the coordinator for the duration of a run.
type Roster struct {
	Meeting  MeetingInfo   `json:"mdt_info"`
	Patients []RosterEntry `json:"patients"`
}
