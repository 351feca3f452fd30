package model

import (
	"context"
	"time"
)

// Collections mirrored between the document store and the relational store.
const (
	CollectionSignalementTypes = "signalementTypes"
	CollectionSignalements     = "signalements"
	CollectionProblemes        = "problemes"
	CollectionUsers            = "users"
)

// SignalementStore persists reports.
type SignalementStore interface {
	GetByFirebaseID(ctx context.Context, firebaseID string) (Signalement, error)
	Save(ctx context.Context, s Signalement) (Signalement, error)
}

// ProblemeStore persists raw problems reported by citizens.
type ProblemeStore interface {
	GetByFirebaseID(ctx context.Context, firebaseID string) (Probleme, error)
	Save(ctx context.Context, p Probleme) (Probleme, error)
}

// SignalementTypeStore persists report types whose ids are shared with the document store.
type SignalementTypeStore interface {
	GetByID(ctx context.Context, id int64) (SignalementType, error)
	UpsertByID(ctx context.Context, t SignalementType) error
	ResyncSequence(ctx context.Context) error
}

// SignalementType categorizes reports.
type SignalementType struct {
	ID         int64
	Libelle    string
	IconColor  *string
	IconSymbol *string
}

// Default statuses applied when the remote document carries none.
const (
	SignalementStatusNew = "nouveau"
	ProblemeStatusOpen   = "ouvert"
)

// Signalement is a validated report. A nil FirebaseID means the row was never mirrored.
type Signalement struct {
	ID              int64
	FirebaseID      *string
	UserID          int64
	TypeID          int64
	Latitude        float64
	Longitude       float64
	Description     *string
	Status          string
	SurfaceM2       *float64
	Budget          *float64
	DateSignalement *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Probleme is a raw citizen report that may later be converted to a Signalement.
type Probleme struct {
	ID          int64
	FirebaseID  *string
	UserID      int64
	TypeID      *int64
	Latitude    float64
	Longitude   float64
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
