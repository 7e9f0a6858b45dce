// Package flightlog persists landing attempts in SQLite through GORM.
package flightlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opd-ai/go-hoverslam/pkg/logging"
)

// FlightRecord is one finished landing attempt.
type FlightRecord struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	CorrelationID    string    `gorm:"size:32;index" json:"correlationId"`
	Mode             string    `gorm:"size:16;index" json:"mode"`
	Success          bool      `gorm:"index" json:"success"`
	LandingVelocity  float64   `json:"landingVelocity"`
	LandingDirection float64   `json:"landingDirection"`
	AngleDeviation   float64   `json:"angleDeviation"`
	InitialFuel      float64   `json:"initialFuel"`
	FuelRemaining    float64   `json:"fuelRemaining"`
	FuelConsumed     float64   `json:"fuelConsumed"` // fraction of InitialFuel
	FlightTime       float64   `json:"flightTime"`   // seconds
	LateralSpeed     float64   `json:"lateralSpeed"`
	Aborted          bool      `json:"aborted"`
	Seed             int64     `json:"seed"`
}

// Stats summarises every stored attempt. BestVelocity is the softest
// successful touchdown and is zero when HasBest is false.
type Stats struct {
	Attempts     int64
	Successes    int64
	BestVelocity float64
	HasBest      bool
}

// Store owns the database handle and must be closed.
type Store struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *logging.Logger
	guard  *writeGuard
}

// Open connects to the SQLite file at path and migrates the schema. An empty
// path opens a private in-memory database.
func Open(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithComponent("flightlog")

	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open flight log %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// every pooled connection to :memory: would see its own empty database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&FlightRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate flight log: %w", err)
	}

	if path == "" {
		log.Debug(context.Background(), "using in-memory flight log")
	} else {
		log.Info(context.Background(), "using flight log", "path", path)
	}

	return &Store{
		db:     db,
		sqlDB:  sqlDB,
		logger: log,
		guard:  newWriteGuard("flightlog", log, maxConsecutiveFailures, writeCooldown),
	}, nil
}

// Save inserts rec and fills in its ID and CreatedAt.
func (s *Store) Save(ctx context.Context, rec *FlightRecord) error {
	if rec == nil {
		return fmt.Errorf("nil flight record")
	}
	if rec.CorrelationID == "" {
		rec.CorrelationID = logging.GetCorrelationID(ctx)
	}
	err := s.guard.execute(ctx, func() error {
		return s.db.WithContext(ctx).Create(rec).Error
	})
	if err != nil {
		return logging.WrapError(err, "failed to save flight record")
	}
	s.logger.Debug(ctx, "flight record saved", "id", rec.ID, "success", rec.Success)
	return nil
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]FlightRecord, error) {
	var records []FlightRecord
	err := s.db.WithContext(ctx).
		Order("id desc").
		Limit(n).
		Find(&records).Error
	if err != nil {
		return nil, logging.WrapError(err, "failed to list flight records")
	}
	return records, nil
}

// Stats aggregates all stored attempts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx).Model(&FlightRecord{})

	if err := db.Count(&st.Attempts).Error; err != nil {
		return st, logging.WrapError(err, "failed to count attempts")
	}
	if err := s.db.WithContext(ctx).Model(&FlightRecord{}).
		Where("success = ?", true).
		Count(&st.Successes).Error; err != nil {
		return st, logging.WrapError(err, "failed to count successes")
	}

	var best sql.NullFloat64
	row := s.db.WithContext(ctx).Model(&FlightRecord{}).
		Select("MIN(landing_velocity)").
		Where("success = ?", true).
		Row()
	if err := row.Scan(&best); err != nil {
		return st, logging.WrapError(err, "failed to query best landing")
	}
	st.BestVelocity = best.Float64
	st.HasBest = best.Valid

	return st, nil
}

// Ping checks that the database still answers and that writes have not
// been suspended by repeated failures.
func (s *Store) Ping(ctx context.Context) error {
	if s.guard.open() {
		return ErrWritesSuspended
	}
	return s.sqlDB.PingContext(ctx)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}
