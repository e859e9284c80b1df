package cache

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/normalize"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
)

// Store keeps the last fetched swap lists and hour summaries on disk so the
// CLI can show something useful while the backend is unreachable. It is a
// read-through snapshot, never a source of truth.
type Store struct {
	conn *gorm.DB
	logg *logger.Logger
}

type swapSnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"index"`
	SwapID    string
	Payload   []byte
	FetchedAt time.Time
}

type hourSnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"index"`
	UserID    string
	Payload   []byte
	FetchedAt time.Time
}

// Open boots the snapshot store at cfg.Path. An in-memory path works for
// tests.
func Open(ctx context.Context, cfg config.CacheConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cache: path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)
	conn, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening snapshot store")
	}
	if err := conn.WithContext(ctx).AutoMigrate(&swapSnapshot{}, &hourSnapshot{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrating snapshot store")
	}

	if logg != nil {
		logg.Debug(logg.WithField(ctx, "path", cfg.Path), "snapshot store opened")
	}
	return &Store{conn: conn, logg: logg}, nil
}

// SaveSwaps replaces the tenant's swap snapshot.
func (s *Store) SaveSwaps(ctx context.Context, tenantID string, swaps []normalize.Swap) error {
	now := time.Now().UTC()
	rows := make([]swapSnapshot, 0, len(swaps))
	for _, swap := range swaps {
		payload, err := json.Marshal(swap)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding swap snapshot")
		}
		rows = append(rows, swapSnapshot{TenantID: tenantID, SwapID: swap.ID, Payload: payload, FetchedAt: now})
	}

	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&swapSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Swaps returns the tenant's last swap snapshot and when it was taken.
func (s *Store) Swaps(ctx context.Context, tenantID string) ([]normalize.Swap, time.Time, error) {
	var rows []swapSnapshot
	if err := s.conn.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&rows).Error; err != nil {
		return nil, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading swap snapshot")
	}

	var fetchedAt time.Time
	swaps := make([]normalize.Swap, 0, len(rows))
	for _, row := range rows {
		var swap normalize.Swap
		if err := json.Unmarshal(row.Payload, &swap); err != nil {
			// A corrupt row is dropped rather than poisoning the list.
			continue
		}
		swaps = append(swaps, swap)
		if row.FetchedAt.After(fetchedAt) {
			fetchedAt = row.FetchedAt
		}
	}
	return swaps, fetchedAt, nil
}

// SaveHourSummaries replaces the tenant's hour snapshot.
func (s *Store) SaveHourSummaries(ctx context.Context, tenantID string, summaries []normalize.HourSummary) error {
	now := time.Now().UTC()
	rows := make([]hourSnapshot, 0, len(summaries))
	for _, summary := range summaries {
		payload, err := json.Marshal(summary)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding hour snapshot")
		}
		rows = append(rows, hourSnapshot{TenantID: tenantID, UserID: summary.UserID, Payload: payload, FetchedAt: now})
	}

	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&hourSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// HourSummaries returns the tenant's last hour snapshot and when it was taken.
func (s *Store) HourSummaries(ctx context.Context, tenantID string) ([]normalize.HourSummary, time.Time, error) {
	var rows []hourSnapshot
	if err := s.conn.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&rows).Error; err != nil {
		return nil, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading hour snapshot")
	}

	var fetchedAt time.Time
	summaries := make([]normalize.HourSummary, 0, len(rows))
	for _, row := range rows {
		var summary normalize.HourSummary
		if err := json.Unmarshal(row.Payload, &summary); err != nil {
			continue
		}
		summaries = append(summaries, summary)
		if row.FetchedAt.After(fetchedAt) {
			fetchedAt = row.FetchedAt
		}
	}
	return summaries, fetchedAt, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
