package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.SignalementStore = (*SignalementRepository)(nil)

type SignalementRepository struct {
	db *Connection
}

func NewSignalementRepository(db *Connection) *SignalementRepository {
	return &SignalementRepository{
		db: db,
	}
}

const signalementColumns = `id, firebase_id, user_id, type_id, latitude, longitude, description, status,
	surface_m2, budget, date_signalement, created_at, updated_at`

func scanSignalement(row pgx.Row) (model.Signalement, error) {
	var s model.Signalement
	err := row.Scan(
		&s.ID, &s.FirebaseID, &s.UserID, &s.TypeID, &s.Latitude, &s.Longitude, &s.Description, &s.Status,
		&s.SurfaceM2, &s.Budget, &s.DateSignalement, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *SignalementRepository) GetByFirebaseID(ctx context.Context, firebaseID string) (model.Signalement, error) {
	query := `SELECT ` + signalementColumns + ` FROM signalements WHERE firebase_id = $1`

	s, err := scanSignalement(r.db.QueryRow(ctx, query, firebaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Signalement{}, model.ErrNotFound
		}
		return model.Signalement{}, fmt.Errorf("failed to get signalement by firebase id: %w", err)
	}

	return s, nil
}

// Save inserts a row when s.ID is zero and overwrites the row otherwise.
func (r *SignalementRepository) Save(ctx context.Context, s model.Signalement) (model.Signalement, error) {
	if s.Status == "" {
		s.Status = model.SignalementStatusNew
	}

	var row pgx.Row
	if s.ID == 0 {
		query := `INSERT INTO signalements (firebase_id, user_id, type_id, latitude, longitude, description, status,
				      surface_m2, budget, date_signalement, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				  RETURNING ` + signalementColumns
		row = r.db.QueryRow(ctx, query,
			s.FirebaseID, s.UserID, s.TypeID, s.Latitude, s.Longitude, s.Description, s.Status,
			s.SurfaceM2, s.Budget, s.DateSignalement, s.CreatedAt, s.UpdatedAt,
		)
	} else {
		query := `UPDATE signalements SET firebase_id = $2, user_id = $3, type_id = $4, latitude = $5, longitude = $6,
				      description = $7, status = $8, surface_m2 = $9, budget = $10, date_signalement = $11,
				      created_at = $12, updated_at = $13
				  WHERE id = $1
				  RETURNING ` + signalementColumns
		row = r.db.QueryRow(ctx, query,
			s.ID, s.FirebaseID, s.UserID, s.TypeID, s.Latitude, s.Longitude, s.Description, s.Status,
			s.SurfaceM2, s.Budget, s.DateSignalement, s.CreatedAt, s.UpdatedAt,
		)
	}

	saved, err := scanSignalement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Signalement{}, model.ErrNotFound
		}
		return model.Signalement{}, fmt.Errorf("failed to save signalement: %w", err)
	}

	return saved, nil
}
