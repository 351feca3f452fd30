package model

import "time"

// CollectionReport counts the outcome of one collection of a reconciliation pass.
type CollectionReport struct {
	Collection string `json:"collection"`
	Fetched    int    `json:"fetched"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

// SyncReport summarizes one reconciliation pass.
type SyncReport struct {
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Trigger     string             `json:"trigger"`
	Online      bool               `json:"online"`
	Collections []CollectionReport `json:"collections"`
	ArchiveKey  string             `json:"archive_key,omitempty"`
}

// Failed reports whether any collection of the pass failed.
func (r SyncReport) Failed() bool {
	for _, c := range r.Collections {
		if c.Error != "" || c.Failed > 0 {
			return true
		}
	}
	return false
}

// Reconciliation triggers.
const (
	SyncTriggerSchedule = "schedule"
	SyncTriggerManual   = "manual"
)
