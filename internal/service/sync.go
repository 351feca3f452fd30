package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dtroode/signalements-server/internal/docvalue"
	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/metrics"
	"github.com/dtroode/signalements-server/internal/model"
)

const reportPrefix = "sync-reports/"

// DefaultPassTimeout bounds a pass when SyncPolicy.PassTimeout is unset.
const DefaultPassTimeout = 10 * time.Minute

// SyncPolicy configures the reconciliation schedule.
type SyncPolicy struct {
	FixedDelay   time.Duration
	InitialDelay time.Duration
	FetchTimeout time.Duration
	PassTimeout  time.Duration
}

// SyncStores groups the relational stores written by a reconciliation pass.
type SyncStores struct {
	Users        model.UserStore
	Types        model.SignalementTypeStore
	Signalements model.SignalementStore
	Problemes    model.ProblemeStore
}

// Sync pulls remote documents into the relational store. A pass runs on the
// first tick that sees the remote side again after an offline tick, or on
// demand through ForceSync.
type Sync struct {
	docs    model.DocumentStore
	stores  SyncStores
	probe   model.ConnectivityProbe
	archive model.Storage
	policy  SyncPolicy
	logger  *logger.Logger
	now     func() time.Time

	passes singleflight.Group
	// lifetime scopes every pass; callers only wait on it.
	lifetime context.Context
	stop     context.CancelFunc

	mu         sync.Mutex
	wasOffline bool
	last       *model.SyncReport
}

// NewSync builds the engine. archive may be nil to disable report archiving.
func NewSync(
	docs model.DocumentStore,
	stores SyncStores,
	probe model.ConnectivityProbe,
	archive model.Storage,
	policy SyncPolicy,
	logger *logger.Logger,
) *Sync {
	if policy.PassTimeout <= 0 {
		policy.PassTimeout = DefaultPassTimeout
	}
	lifetime, stop := context.WithCancel(context.Background())
	return &Sync{
		docs:     docs,
		stores:   stores,
		probe:    probe,
		archive:  archive,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
		lifetime: lifetime,
		stop:     stop,
	}
}

// Close aborts the running pass, if any. Later passes fail their fetches.
func (s *Sync) Close() {
	s.stop()
}

// Run ticks after InitialDelay and then FixedDelay after the end of each
// tick until ctx is done.
func (s *Sync) Run(ctx context.Context) {
	timer := time.NewTimer(s.policy.InitialDelay)
	defer timer.Stop()

	s.logger.Info("Sync service: scheduler started",
		"initial_delay", s.policy.InitialDelay,
		"fixed_delay", s.policy.FixedDelay)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync service: scheduler stopped")
			return
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.policy.FixedDelay)
		}
	}
}

// Tick runs a pass only on the offline to online edge and reports whether
// it did.
func (s *Sync) Tick(ctx context.Context) bool {
	online := s.probe.IsOnline(ctx)

	s.mu.Lock()
	if !online {
		if !s.wasOffline {
			s.logger.Info("Sync service: remote side unreachable, waiting for reconnection")
		}
		s.wasOffline = true
		s.mu.Unlock()
		return false
	}
	reconnected := s.wasOffline
	s.wasOffline = false
	s.mu.Unlock()

	if !reconnected {
		return false
	}

	s.logger.Info("Sync service: reconnected, starting reconciliation")
	s.pass(ctx, model.SyncTriggerSchedule)
	return true
}

// ForceSync runs a pass now when online. Offline it touches nothing and
// returns model.ErrOffline with a report flagged offline.
func (s *Sync) ForceSync(ctx context.Context) (model.SyncReport, error) {
	if !s.probe.IsOnline(ctx) {
		s.logger.Info("Sync service: forced sync skipped, offline")
		now := s.now()
		return model.SyncReport{
			StartedAt:  now,
			FinishedAt: now,
			Trigger:    model.SyncTriggerManual,
			Online:     false,
		}, model.ErrOffline
	}

	s.mu.Lock()
	s.wasOffline = false
	s.mu.Unlock()

	return s.pass(ctx, model.SyncTriggerManual), nil
}

// LastReport returns the report of the most recent pass.
func (s *Sync) LastReport() (model.SyncReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return model.SyncReport{}, false
	}
	return *s.last, true
}

// ArchivedReport loads a report previously archived under key.
func (s *Sync) ArchivedReport(ctx context.Context, key string) (model.SyncReport, error) {
	if s.archive == nil {
		return model.SyncReport{}, model.ErrNotFound
	}
	if !strings.HasPrefix(key, reportPrefix) {
		return model.SyncReport{}, model.ErrNotFound
	}

	rc, err := s.archive.Download(ctx, key)
	if err != nil {
		return model.SyncReport{}, err
	}
	defer rc.Close()

	var report model.SyncReport
	if err := json.NewDecoder(rc).Decode(&report); err != nil {
		return model.SyncReport{}, fmt.Errorf("failed to decode archived report: %w", err)
	}
	return report, nil
}

// pass collapses concurrent callers onto a single running pass. The pass
// runs on the service lifetime bounded by PassTimeout, so a caller that
// goes away does not abort it for the others.
func (s *Sync) pass(ctx context.Context, trigger string) model.SyncReport {
	ch := s.passes.DoChan("pass", func() (any, error) {
		passCtx, cancel := context.WithTimeout(s.lifetime, s.policy.PassTimeout)
		defer cancel()
		return s.runPass(passCtx, trigger), nil
	})

	select {
	case res := <-ch:
		return res.Val.(model.SyncReport)
	case <-ctx.Done():
		s.logger.Warn("Sync service: caller left before the pass finished",
			"trigger", trigger,
			"error", ctx.Err().Error())
		now := s.now()
		return model.SyncReport{StartedAt: now, FinishedAt: now, Trigger: trigger, Online: true}
	}
}

func (s *Sync) runPass(ctx context.Context, trigger string) model.SyncReport {
	report := model.SyncReport{
		StartedAt: s.now(),
		Trigger:   trigger,
		Online:    true,
	}

	types := s.syncCollection(ctx, model.CollectionSignalementTypes, s.fetchTypes, s.syncType)
	if types.Created+types.Updated > 0 {
		if err := s.stores.Types.ResyncSequence(ctx); err != nil {
			s.logger.Error("Sync service: failed to resync type sequence",
				"error", err.Error())
			types.Error = err.Error()
		}
	}

	var signalements, problemes model.CollectionReport
	var g errgroup.Group
	g.Go(func() error {
		signalements = s.syncCollection(ctx, model.CollectionSignalements, s.fetchAll(model.CollectionSignalements), s.syncSignalement)
		return nil
	})
	g.Go(func() error {
		problemes = s.syncCollection(ctx, model.CollectionProblemes, s.fetchAll(model.CollectionProblemes), s.syncProbleme)
		return nil
	})
	_ = g.Wait()

	report.Collections = []model.CollectionReport{types, signalements, problemes}
	report.FinishedAt = s.now()
	metrics.ObservePass(trigger, report.FinishedAt.Sub(report.StartedAt).Seconds())

	s.archiveReport(ctx, &report)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	s.logger.Info("Sync service: reconciliation finished",
		"trigger", trigger,
		"duration", report.FinishedAt.Sub(report.StartedAt),
		"failed", report.Failed())

	return report
}

type fetchFunc func(ctx context.Context) ([]model.Document, error)

// syncFunc applies one document and returns its metrics result.
type syncFunc func(ctx context.Context, doc model.Document) (string, error)

func (s *Sync) fetchAll(collection string) fetchFunc {
	return func(ctx context.Context) ([]model.Document, error) {
		return s.docs.GetAll(ctx, collection)
	}
}

func (s *Sync) fetchTypes(ctx context.Context) ([]model.Document, error) {
	return s.docs.WhereEqual(ctx, model.CollectionSignalementTypes, "isActive", true)
}

// syncCollection never propagates errors: a failing fetch is reported on
// the collection and a failing document is counted and skipped.
func (s *Sync) syncCollection(ctx context.Context, collection string, fetch fetchFunc, apply syncFunc) model.CollectionReport {
	report := model.CollectionReport{Collection: collection}

	fetchCtx, cancel := context.WithTimeout(ctx, s.policy.FetchTimeout)
	docs, err := fetch(fetchCtx)
	cancel()
	if err != nil {
		s.logger.Error("Sync service: failed to fetch collection",
			"collection", collection,
			"error", err.Error())
		report.Error = err.Error()
		return report
	}
	report.Fetched = len(docs)

	for _, doc := range docs {
		if ctx.Err() != nil {
			report.Error = ctx.Err().Error()
			break
		}

		result, err := apply(ctx, doc)
		if err != nil {
			s.logger.Error("Sync service: failed to reconcile document",
				"collection", collection,
				"document", doc.ID,
				"error", err.Error())
			result = metrics.ResultFailed
		}
		metrics.ObserveDocument(collection, result)

		switch result {
		case metrics.ResultCreated:
			report.Created++
		case metrics.ResultUpdated:
			report.Updated++
		case metrics.ResultSkipped:
			report.Skipped++
		case metrics.ResultFailed:
			report.Failed++
		}
	}

	s.logger.Info("Sync service: collection reconciled",
		"collection", collection,
		"fetched", report.Fetched,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report
}

func (s *Sync) syncType(ctx context.Context, doc model.Document) (string, error) {
	id, ok := docvalue.Int64(doc.Data["id"])
	if !ok {
		id, ok = docvalue.Int64(doc.ID)
	}
	if !ok {
		s.skip(model.CollectionSignalementTypes, doc.ID, "missing id")
		return metrics.ResultSkipped, nil
	}
	libelle, ok := docvalue.NonBlank(doc.Data["libelle"])
	if !ok {
		s.skip(model.CollectionSignalementTypes, doc.ID, "missing libelle")
		return metrics.ResultSkipped, nil
	}

	result := metrics.ResultUpdated
	if _, err := s.stores.Types.GetByID(ctx, id); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return "", err
		}
		result = metrics.ResultCreated
	}

	err := s.stores.Types.UpsertByID(ctx, model.SignalementType{
		ID:         id,
		Libelle:    libelle,
		IconColor:  docvalue.OptionalString(doc.Data["iconColor"]),
		IconSymbol: docvalue.OptionalString(doc.Data["iconSymbol"]),
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (s *Sync) syncSignalement(ctx context.Context, doc model.Document) (string, error) {
	const collection = model.CollectionSignalements

	fid, ok := s.correlate(collection, doc)
	if !ok {
		return metrics.ResultSkipped, nil
	}

	userID, ok, err := s.resolveUser(ctx, doc.Data["userId"])
	if err != nil {
		return "", err
	}
	if !ok {
		s.skip(collection, doc.ID, "unresolved user")
		return metrics.ResultSkipped, nil
	}
	typeID, ok, err := s.resolveType(ctx, doc.Data["typeId"])
	if err != nil {
		return "", err
	}
	if !ok {
		s.skip(collection, doc.ID, "unresolved type")
		return metrics.ResultSkipped, nil
	}
	lat, lon, ok := coordinates(doc.Data)
	if !ok {
		s.skip(collection, doc.ID, "missing coordinates")
		return metrics.ResultSkipped, nil
	}

	row, err := s.stores.Signalements.GetByFirebaseID(ctx, fid)
	result := metrics.ResultUpdated
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return "", err
		}
		row = model.Signalement{CreatedAt: s.now()}
		result = metrics.ResultCreated
	}

	row.FirebaseID = &fid
	row.UserID = userID
	row.TypeID = typeID
	row.Latitude = lat
	row.Longitude = lon
	row.Description = docvalue.OptionalString(doc.Data["description"])
	row.SurfaceM2 = docvalue.OptionalFloat64(doc.Data["surfaceM2"])
	row.Budget = docvalue.OptionalFloat64(doc.Data["budget"])
	row.Status = model.SignalementStatusNew
	if status, ok := docvalue.NonBlank(doc.Data["status"]); ok {
		row.Status = status
	}
	if t, ok := docvalue.Time(doc.Data["createdAt"]); ok {
		row.CreatedAt = t
	}
	if t := docvalue.OptionalTime(doc.Data["dateSignalement"]); t != nil {
		row.DateSignalement = t
	}
	if t := docvalue.OptionalTime(doc.Data["updatedAt"]); t != nil {
		row.UpdatedAt = t
	}

	if _, err := s.stores.Signalements.Save(ctx, row); err != nil {
		return "", err
	}
	return result, nil
}

func (s *Sync) syncProbleme(ctx context.Context, doc model.Document) (string, error) {
	const collection = model.CollectionProblemes

	fid, ok := s.correlate(collection, doc)
	if !ok {
		return metrics.ResultSkipped, nil
	}

	userID, ok, err := s.resolveUser(ctx, doc.Data["userId"])
	if err != nil {
		return "", err
	}
	if !ok {
		s.skip(collection, doc.ID, "unresolved user")
		return metrics.ResultSkipped, nil
	}
	lat, lon, ok := coordinates(doc.Data)
	if !ok {
		s.skip(collection, doc.ID, "missing coordinates")
		return metrics.ResultSkipped, nil
	}

	var typeID *int64
	if _, present := doc.Data["typeId"]; present {
		id, ok, err := s.resolveType(ctx, doc.Data["typeId"])
		if err != nil {
			return "", err
		}
		if ok {
			typeID = &id
		}
	}

	row, err := s.stores.Problemes.GetByFirebaseID(ctx, fid)
	result := metrics.ResultUpdated
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return "", err
		}
		row = model.Probleme{CreatedAt: s.now()}
		result = metrics.ResultCreated
	}

	row.FirebaseID = &fid
	row.UserID = userID
	row.TypeID = typeID
	row.Latitude = lat
	row.Longitude = lon
	row.Description, _ = docvalue.String(doc.Data["description"])
	row.Status = model.ProblemeStatusOpen
	if status, ok := docvalue.NonBlank(doc.Data["status"]); ok {
		row.Status = status
	}
	if t, ok := docvalue.Time(doc.Data["createdAt"]); ok {
		row.CreatedAt = t
	}
	if t := docvalue.OptionalTime(doc.Data["updatedAt"]); t != nil {
		row.UpdatedAt = t
	}

	if _, err := s.stores.Problemes.Save(ctx, row); err != nil {
		return "", err
	}
	return result, nil
}

// correlate returns the correlation id of doc, skipping example documents.
func (s *Sync) correlate(collection string, doc model.Document) (string, bool) {
	if docvalue.True(doc.Data["_isExample"]) {
		s.skip(collection, doc.ID, "example document")
		return "", false
	}

	id := strings.TrimSpace(doc.ID)
	if id == "" {
		id, _ = docvalue.NonBlank(doc.Data["firebaseId"])
	}
	if id == "" {
		s.skip(collection, doc.ID, "missing correlation id")
		return "", false
	}
	return id, true
}

// resolveUser returns ok=false when the reference is absent or names no
// existing user.
func (s *Sync) resolveUser(ctx context.Context, v any) (int64, bool, error) {
	ref, ok := docvalue.UserRef(v)
	if !ok {
		return 0, false, nil
	}

	var (
		user model.User
		err  error
	)
	if ref.HasID {
		user, err = s.stores.Users.GetByID(ctx, ref.ID)
	} else {
		user, err = s.stores.Users.GetByEmail(ctx, model.NormalizeIdentity(ref.Email))
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, true, nil
}

func (s *Sync) resolveType(ctx context.Context, v any) (int64, bool, error) {
	id, ok := docvalue.Int64(v)
	if !ok {
		return 0, false, nil
	}

	if _, err := s.stores.Types.GetByID(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve type: %w", err)
	}
	return id, true, nil
}

func coordinates(data map[string]any) (float64, float64, bool) {
	lat, ok := docvalue.Float64(data["latitude"])
	if !ok {
		return 0, 0, false
	}
	lon, ok := docvalue.Float64(data["longitude"])
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func (s *Sync) skip(collection, id, reason string) {
	s.logger.Debug("Sync service: document skipped",
		"collection", collection,
		"document", id,
		"reason", reason)
}

// archiveReport is best-effort; the key is recorded only on success.
func (s *Sync) archiveReport(ctx context.Context, report *model.SyncReport) {
	if s.archive == nil {
		return
	}

	key := reportPrefix + report.StartedAt.UTC().Format("20060102T150405.000000000Z") + ".json"
	report.ArchiveKey = key

	body, err := json.Marshal(report)
	if err != nil {
		report.ArchiveKey = ""
		s.logger.Error("Sync service: failed to marshal report",
			"error", err.Error())
		return
	}

	if err := s.archive.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		report.ArchiveKey = ""
		s.logger.Warn("Sync service: failed to archive report",
			"key", key,
			"error", err.Error())
	}
}
