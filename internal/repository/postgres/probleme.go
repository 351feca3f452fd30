package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.ProblemeStore = (*ProblemeRepository)(nil)

type ProblemeRepository struct {
	db *Connection
}

func NewProblemeRepository(db *Connection) *ProblemeRepository {
	return &ProblemeRepository{
		db: db,
	}
}

const problemeColumns = `id, firebase_id, user_id, type_id, latitude, longitude, description, status, created_at, updated_at`

func scanProbleme(row pgx.Row) (model.Probleme, error) {
	var p model.Probleme
	err := row.Scan(
		&p.ID, &p.FirebaseID, &p.UserID, &p.TypeID, &p.Latitude, &p.Longitude,
		&p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *ProblemeRepository) GetByFirebaseID(ctx context.Context, firebaseID string) (model.Probleme, error) {
	query := `SELECT ` + problemeColumns + ` FROM problemes WHERE firebase_id = $1`

	p, err := scanProbleme(r.db.QueryRow(ctx, query, firebaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Probleme{}, model.ErrNotFound
		}
		return model.Probleme{}, fmt.Errorf("failed to get probleme by firebase id: %w", err)
	}

	return p, nil
}

func (r *ProblemeRepository) Save(ctx context.Context, p model.Probleme) (model.Probleme, error) {
	if p.Status == "" {
		p.Status = model.ProblemeStatusOpen
	}

	var row pgx.Row
	if p.ID == 0 {
		query := `INSERT INTO problemes (firebase_id, user_id, type_id, latitude, longitude, description, status,
				      created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				  RETURNING ` + problemeColumns
		row = r.db.QueryRow(ctx, query,
			p.FirebaseID, p.UserID, p.TypeID, p.Latitude, p.Longitude, p.Description, p.Status,
			p.CreatedAt, p.UpdatedAt,
		)
	} else {
		query := `UPDATE problemes SET firebase_id = $2, user_id = $3, type_id = $4, latitude = $5, longitude = $6,
				      description = $7, status = $8, created_at = $9, updated_at = $10
				  WHERE id = $1
				  RETURNING ` + problemeColumns
		row = r.db.QueryRow(ctx, query,
			p.ID, p.FirebaseID, p.UserID, p.TypeID, p.Latitude, p.Longitude, p.Description, p.Status,
			p.CreatedAt, p.UpdatedAt,
		)
	}

	saved, err := scanProbleme(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Probleme{}, model.ErrNotFound
		}
		return model.Probleme{}, fmt.Errorf("failed to save probleme: %w", err)
	}

	return saved, nil
}
