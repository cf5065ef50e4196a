package sink

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// foldResult is the gorm model for the mirrored results table.
type foldResult struct {
	JobID       string `gorm:"primaryKey;column:job_id"`
	Status      string
	Sequence    string
	Artifact    []byte
	Energy      *float64
	CompletedAt time.Time
}

func (foldResult) TableName() string { return "fold_results" }

// Compile-time interface satisfaction check.
var _ Sink = (*PostgresSink)(nil)

// PostgresSink mirrors results into a Postgres database, for deployments
// where the mirror is shared across service instances.
type PostgresSink struct {
	db *gorm.DB
}

// NewPostgresSink connects with the given DSN and runs migrations.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&foldResult{}); err != nil {
		return nil, fmt.Errorf("migrate results table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record upserts the result row for the job id.
func (s *PostgresSink) Record(ctx context.Context, r Result) error {
	row := foldResult{
		JobID:       r.JobID,
		Status:      r.Status,
		Sequence:    r.Sequence,
		Artifact:    r.Artifact,
		Energy:      r.Energy,
		CompletedAt: r.CompletedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}
