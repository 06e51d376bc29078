//go:build !js && !wasm
// +build !js,!wasm

package foodlens

import (
	"errors"
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/storage"
)

// ErrNotFound is returned by journals for unknown record ids.
var ErrNotFound = storage.ErrNotFound

// sqliteJournal adapts storage.DBClient to the Journal interface.
type sqliteJournal struct {
	db *storage.DBClient
}

// NewSQLiteJournal opens (or creates) a sqlite journal at dbPath.
func NewSQLiteJournal(dbPath string) (Journal, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteJournal{db: db}, nil
}

func openJournal(dbPath string) (Journal, error) {
	return NewSQLiteJournal(dbPath)
}

func (j *sqliteJournal) RecordScan(sessionID string, sym scan.Symbology, e scan.Event, at time.Time) (string, error) {
	return j.db.RecordScan(sessionID, sym.String(), e.Data, at)
}

func (j *sqliteJournal) RecordCapture(sessionID string, req CaptureRequest, at time.Time) (string, error) {
	rec := storage.CaptureRecord{
		SessionID: sessionID,
		Zoom:      req.Zoom,
		CreatedAt: at.UTC(),
	}
	if req.Crop != nil {
		rec.Cropped = true
		rec.CropX = req.Crop.X
		rec.CropY = req.Crop.Y
		rec.CropWidth = req.Crop.Width
		rec.CropHeight = req.Crop.Height
	}
	return j.db.RecordCapture(rec)
}

func (j *sqliteJournal) ListScans(limit int) ([]ScanRecord, error) {
	rows, err := j.db.ListScans(limit)
	if err != nil {
		return nil, err
	}
	return toScanRecords(rows), nil
}

func (j *sqliteJournal) ListScansBySession(sessionID string) ([]ScanRecord, error) {
	rows, err := j.db.ListScansBySession(sessionID)
	if err != nil {
		return nil, err
	}
	return toScanRecords(rows), nil
}

func (j *sqliteJournal) GetScan(id string) (*ScanRecord, error) {
	row, err := j.db.GetScan(id)
	if err != nil {
		return nil, err
	}
	rec := toScanRecord(*row)
	return &rec, nil
}

func (j *sqliteJournal) DeleteScan(id string) error {
	return j.db.DeleteScan(id)
}

func (j *sqliteJournal) Stats() (Stats, error) {
	scans, err := j.db.CountScans()
	if err != nil {
		return Stats{}, err
	}
	captures, err := j.db.CountCaptures()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Scans: scans, Captures: captures}, nil
}

func (j *sqliteJournal) Close() error {
	return j.db.Close()
}

func toScanRecord(r storage.ScanRecord) ScanRecord {
	return ScanRecord{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Symbology:  r.Symbology,
		Payload:    r.Payload,
		AcceptedAt: r.AcceptedAt,
	}
}

func toScanRecords(rows []storage.ScanRecord) []ScanRecord {
	out := make([]ScanRecord, len(rows))
	for i, r := range rows {
		out[i] = toScanRecord(r)
	}
	return out
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
