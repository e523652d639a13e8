package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// RadiologyScan is one row from the radiology scan log.
type RadiologyScan struct {
	PatientID    string
	ScanDate     time.Time
	Modality     string // CT, MRI, PET-CT, US, XR
	BodyPart     string
	ReportStatus string // SIGNED or DRAFT
	Findings     string
	SignedBy     string
}

// RadiologyLog reads the CSV radiology scan log. The file is re-read per
// query; the log is small and externally updated.
type RadiologyLog struct {
	path string
}

// NewRadiologyLog creates a client for the log at path.
func NewRadiologyLog(path string) *RadiologyLog {
	return &RadiologyLog{path: path}
}

// radiologyColumns is the expected CSV header order.
var radiologyColumns = []string{
	"patient_id", "scan_date", "modality", "body_part",
	"report_status", "findings_summary", "signed_by",
}

// Scans returns all scans logged for a patient. An empty slice is a valid
// result meaning the log holds nothing for the patient.
func (l *RadiologyLog) Scans(ctx context.Context, patientID string) ([]RadiologyScan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open radiology log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(radiologyColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read radiology header: %w", err)
	}
	for i, col := range radiologyColumns {
		if header[i] != col {
			return nil, fmt.Errorf("radiology log column %d is %q, want %q", i, header[i], col)
		}
	}

	var scans []RadiologyScan
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read radiology row: %w", err)
		}
		if row[0] != patientID {
			continue
		}

		date, err := time.Parse("2006-01-02", row[1])
		if err != nil {
			return nil, fmt.Errorf("parse scan date %q: %w", row[1], err)
		}

		scans = append(scans, RadiologyScan{
			PatientID:    row[0],
			ScanDate:     date,
			Modality:     row[2],
			BodyPart:     row[3],
			ReportStatus: row[4],
			Findings:     row[5],
			SignedBy:     row[6],
		})
	}

	return scans, nil
}
