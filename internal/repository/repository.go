package repository

import (
	"context"
	"database/sql"
	"time"

	"thermostat_hub/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type TelemetryRepo interface {
	AppendBatch(ctx context.Context, samples []models.TelemetrySample) error
	List(ctx context.Context, from, to time.Time, deviceID string) ([]models.TelemetrySample, error)
}

type Repository struct {
	Telemetry TelemetryRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Telemetry: NewTelemetrySQLite(db),
		Auth:      NewUserRepository(db),
	}
}
