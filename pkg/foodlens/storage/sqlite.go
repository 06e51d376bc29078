//go:build !js && !wasm
// +build !js,!wasm

// Package storage keeps a journal of accepted scans and capture requests.
// Captured images are never stored here, only the requests that produced them.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/FoodLens/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "foodlens.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type ScanRecord struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID  string    `gorm:"type:varchar(36);index:idx_scan_session" json:"session_id"`
	Symbology  string    `gorm:"index:idx_scan_payload,priority:1" json:"symbology"`
	Payload    string    `gorm:"index:idx_scan_payload,priority:2" json:"payload"`
	AcceptedAt time.Time `gorm:"index:idx_scan_time" json:"accepted_at"`
}

type CaptureRecord struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID  string  `gorm:"type:varchar(36);index:idx_capture_session" json:"session_id"`
	Zoom       float64 `json:"zoom"`
	Cropped    bool    `json:"cropped"`
	CropX      float64 `json:"crop_x"`
	CropY      float64 `json:"crop_y"`
	CropWidth  float64 `json:"crop_width"`
	CropHeight float64 `json:"crop_height"`
	CreatedAt  time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("FOODLENS_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&ScanRecord{}, &CaptureRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RecordScan stores an accepted scan and returns its id.
func (c *DBClient) RecordScan(sessionID, symbology, payload string, acceptedAt time.Time) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	rec := ScanRecord{
		ID:         utils.GenerateUUID(),
		SessionID:  sessionID,
		Symbology:  symbology,
		Payload:    payload,
		AcceptedAt: acceptedAt.UTC(),
	}
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating scan: %w", err)
	}
	return rec.ID, nil
}

// ListScans returns the most recent scans first. limit <= 0 means no limit.
func (c *DBClient) ListScans(limit int) ([]ScanRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	q := c.DB.Order("accepted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []ScanRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return rows, nil
}

// ListScansBySession returns one session's scans in acceptance order.
func (c *DBClient) ListScansBySession(sessionID string) ([]ScanRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []ScanRecord
	if err := c.DB.Where("session_id = ?", sessionID).Order("accepted_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing session scans: %w", err)
	}
	return rows, nil
}

func (c *DBClient) GetScan(id string) (*ScanRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rec ScanRecord
	err := c.DB.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying scan: %w", err)
	}
	return &rec, nil
}

func (c *DBClient) DeleteScan(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.Where("id = ?", id).Delete(&ScanRecord{})
	if res.Error != nil {
		return fmt.Errorf("deleting scan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return nil
}

func (c *DBClient) CountScans() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&ScanRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting scans: %w", err)
	}
	return n, nil
}

// RecordCapture stores a capture request. A nil crop means an uncropped capture.
func (c *DBClient) RecordCapture(rec CaptureRecord) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if rec.ID == "" {
		rec.ID = utils.GenerateUUID()
	}
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating capture: %w", err)
	}
	return rec.ID, nil
}

func (c *DBClient) ListCaptures(sessionID string) ([]CaptureRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []CaptureRecord
	if err := c.DB.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing captures: %w", err)
	}
	return rows, nil
}

func (c *DBClient) CountCaptures() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&CaptureRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting captures: %w", err)
	}
	return n, nil
}
