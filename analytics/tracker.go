// Package analytics records page views into an append-only log kept in a key/value store
// and answers aggregate queries by scanning that log.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codingcats/api/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	LogKey       = "codingcats_analytics"
	UserIDKey    = "codingcats_user_id"
	SessionIDKey = "codingcats_session_id"
)

// Store is the storage binding the tracker reads and writes. Get reports ok=false for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Sink receives a copy of every recorded visit.
type Sink interface {
	InsertVisits(ctx context.Context, visits []models.VisitRecord) error
}

type CountryResolver interface {
	Country(ip string) string
}

// Environment is what the host knows about the client making the request.
type Environment struct {
	UserAgent    string
	ScreenWidth  int
	ScreenHeight int
	Language     string
	Referrer     string
	ClientIP     string
}

type Identity struct {
	SessionID    string `json:"sessionId"`
	PseudoUserID string `json:"pseudoUserId"`
}

type Tracker struct {
	durable  Store
	session  Store
	logStore Store

	env     Environment
	sink    Sink
	country CountryResolver
	now     func() time.Time
	newID   func() string
}

type Option func(*Tracker)

// WithLogStore keeps the visit log in a store other than the durable identity store.
func WithLogStore(s Store) Option {
	return func(t *Tracker) {
		if s != nil {
			t.logStore = s
		}
	}
}

func WithEnvironment(env Environment) Option {
	return func(t *Tracker) { t.env = env }
}

func WithSink(s Sink) Option {
	return func(t *Tracker) { t.sink = s }
}

func WithCountryResolver(r CountryResolver) Option {
	return func(t *Tracker) { t.country = r }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) {
		if gen != nil {
			t.newID = gen
		}
	}
}

func NewTracker(durable, session Store, opts ...Option) *Tracker {
	t := &Tracker{
		durable:  durable,
		session:  session,
		logStore: durable,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// ResolveIdentity returns the session and pseudo-user identifiers, generating and storing
// any that are missing. The returned identity is usable even when err is non-nil. When a
// store cannot be read the identifier is generated for this call only and nothing is written.
func (t *Tracker) ResolveIdentity(ctx context.Context) (Identity, error) {
	sid, sidErr := t.resolveID(ctx, t.session, SessionIDKey)
	uid, uidErr := t.resolveID(ctx, t.durable, UserIDKey)
	id := Identity{SessionID: sid, PseudoUserID: uid}
	if sidErr != nil {
		return id, sidErr
	}
	return id, uidErr
}

func (t *Tracker) resolveID(ctx context.Context, s Store, key string) (string, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		// The stored id may still exist, so the fresh one is never written.
		return t.newID(), fmt.Errorf("failed to read %s: %w", key, err)
	}
	if ok {
		if v := strings.TrimSpace(string(raw)); v != "" {
			return v, nil
		}
	}

	id := t.newID()
	if err := s.Set(ctx, key, []byte(id)); err != nil {
		return id, fmt.Errorf("failed to store %s: %w", key, err)
	}
	return id, nil
}

// TrackPageView builds a visit record for path and appends it to the log. The append is a
// plain read-modify-write of the whole log, so concurrent writers sharing one store can lose
// each other's records (last writer wins).
func (t *Tracker) TrackPageView(ctx context.Context, path string) (models.VisitRecord, error) {
	identity, err := t.ResolveIdentity(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("analytics: identity not persisted")
	}

	device, browser, osName := ClassifyUserAgent(t.env.UserAgent)
	referrer := strings.TrimSpace(t.env.Referrer)
	if referrer == "" {
		referrer = models.DirectReferrer
	}

	record := models.VisitRecord{
		SessionID:        identity.SessionID,
		PseudoUserID:     identity.PseudoUserID,
		Timestamp:        t.now(),
		Path:             path,
		Referrer:         referrer,
		DeviceClass:      device,
		BrowserName:      browser,
		OperatingSystem:  osName,
		ScreenResolution: fmt.Sprintf("%dx%d", t.env.ScreenWidth, t.env.ScreenHeight),
		Language:         t.env.Language,
	}
	if t.country != nil && t.env.ClientIP != "" {
		record.Country = t.country.Country(t.env.ClientIP)
	}

	records, err := t.loadRecords(ctx)
	if err != nil {
		return record, err
	}
	records = append(records, record)
	blob, err := json.Marshal(records)
	if err != nil {
		return record, fmt.Errorf("failed to encode visit log: %w", err)
	}
	if err := t.logStore.Set(ctx, LogKey, blob); err != nil {
		return record, fmt.Errorf("failed to write visit log: %w", err)
	}

	if t.sink != nil {
		if err := t.sink.InsertVisits(ctx, []models.VisitRecord{record}); err != nil {
			log.Error().Err(err).Str("path", path).Msg("analytics: failed to forward visit to sink")
		}
	}
	return record, nil
}

// Records decodes the whole log. A missing, unreadable or corrupt log reads as empty.
func (t *Tracker) Records(ctx context.Context) []models.VisitRecord {
	records, err := t.loadRecords(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("analytics: treating unreadable visit log as empty")
		return nil
	}
	return records
}

// loadRecords fails only when the store itself cannot be read. A missing or corrupt log
// decodes as empty.
func (t *Tracker) loadRecords(ctx context.Context) ([]models.VisitRecord, error) {
	raw, ok, err := t.logStore.Get(ctx, LogKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read visit log: %w", err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var records []models.VisitRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Warn().Err(err).Msg("analytics: visit log is corrupt, treating as empty")
		return nil, nil
	}
	return records, nil
}
