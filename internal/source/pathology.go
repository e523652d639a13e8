// Package source implements the concrete clinical data collaborators: the
// SQLite pathology store, the CSV radiology log, the JSON clinical-notes and
// genomics stores, and the YAML contraindication rule book. Each client
// exposes only the query contract the fetch layer requires.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// PathologyReport is one row from the pathology store.
type PathologyReport struct {
	PatientID        string
	ReportType       string // resection, excision, biopsy, cytology
	ReportDate       time.Time
	SignedStatus     string // SIGNED or DRAFT
	SignedBy         string
	Diagnosis        string
	HistologicalType string
	Grade            string
	ERStatus         string
	PRStatus         string
	HER2Status       string
	Ki67Percentage   float64
	NodesPositive    int
	NodesExamined    int
	Margins          string
}

// PathologyStore wraps the SQLite pathology report database.
type PathologyStore struct {
	conn *sql.DB
	path string
}

// OpenPathology opens the pathology store at the given path.
func OpenPathology(path string) (*PathologyStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open pathology database: %w", err)
	}

	// WAL mode allows concurrent per-patient reads.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &PathologyStore{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *PathologyStore) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the report table if it does not exist.
func (s *PathologyStore) EnsureSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS pathology_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id TEXT NOT NULL,
			report_type TEXT NOT NULL,
			report_date TEXT NOT NULL,
			signed_status TEXT NOT NULL,
			signed_by TEXT NOT NULL DEFAULT '',
			diagnosis TEXT NOT NULL DEFAULT '',
			histological_type TEXT NOT NULL DEFAULT '',
			grade TEXT NOT NULL DEFAULT '',
			er_status TEXT NOT NULL DEFAULT '',
			pr_status TEXT NOT NULL DEFAULT '',
			her2_status TEXT NOT NULL DEFAULT '',
			ki67_percentage REAL NOT NULL DEFAULT 0,
			nodes_positive INTEGER NOT NULL DEFAULT 0,
			nodes_examined INTEGER NOT NULL DEFAULT 0,
			margins TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("create pathology_reports table: %w", err)
	}

	_, err = s.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_pathology_patient ON pathology_reports(patient_id)`)
	if err != nil {
		return fmt.Errorf("create patient index: %w", err)
	}
	return nil
}

// Insert adds a report. Used by data seeding and tests.
func (s *PathologyStore) Insert(ctx context.Context, r PathologyReport) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO pathology_reports (
			patient_id, report_type, report_date, signed_status, signed_by,
			diagnosis, histological_type, grade, er_status, pr_status,
			her2_status, ki67_percentage, nodes_positive, nodes_examined, margins
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PatientID, r.ReportType, r.ReportDate.Format(time.RFC3339), r.SignedStatus, r.SignedBy,
		r.Diagnosis, r.HistologicalType, r.Grade, r.ERStatus, r.PRStatus,
		r.HER2Status, r.Ki67Percentage, r.NodesPositive, r.NodesExamined, r.Margins,
	)
	if err != nil {
		return fmt.Errorf("insert pathology report: %w", err)
	}
	return nil
}

// Reports returns all reports for a patient, newest first. An empty slice is
// a valid result meaning the store holds nothing for the patient.
func (s *PathologyStore) Reports(ctx context.Context, patientID string) ([]PathologyReport, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT patient_id, report_type, report_date, signed_status, signed_by,
		       diagnosis, histological_type, grade, er_status, pr_status,
		       her2_status, ki67_percentage, nodes_positive, nodes_examined, margins
		FROM pathology_reports
		WHERE patient_id = ?
		ORDER BY report_date DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query pathology reports: %w", err)
	}
	defer rows.Close()

	var reports []PathologyReport
	for rows.Next() {
		var r PathologyReport
		var date string
		if err := rows.Scan(
			&r.PatientID, &r.ReportType, &date, &r.SignedStatus, &r.SignedBy,
			&r.Diagnosis, &r.HistologicalType, &r.Grade, &r.ERStatus, &r.PRStatus,
			&r.HER2Status, &r.Ki67Percentage, &r.NodesPositive, &r.NodesExamined, &r.Margins,
		); err != nil {
			return nil, fmt.Errorf("scan pathology report: %w", err)
		}
		r.ReportDate, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parse report date %q: %w", date, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pathology reports: %w", err)
	}

	return reports, nil
}
