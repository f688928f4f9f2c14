package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

const (
	keyPrefix = "backups/"
	keySuffix = ".msgpack"
	keyLayout = "20060102T150405Z"
)

// ErrNotFound is returned by a Store when the key holds no object.
var ErrNotFound = errors.New("backup not found")

//go:generate mockgen -source=service.go -destination=store_mock.go -package=backup
type Store interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type Tracker interface {
	Snapshot(ctx context.Context) tracker.Snapshot
	Restore(ctx context.Context, snap tracker.Snapshot) error
}

type SettingsStore interface {
	Get(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, st settings.Settings) error
}

type Service struct {
	store    Store
	tracker  Tracker
	settings SettingsStore
	now      func() time.Time
}

func NewService(store Store, t Tracker, st SettingsStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:    store,
		tracker:  t,
		settings: st,
		now:      now,
	}
}

// Backup uploads the current collections and settings and returns the object key.
func (s *Service) Backup(ctx context.Context) (string, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("reading settings: %w", err)
	}

	createdAt := s.now().UTC()

	payload, err := encode(newDocument(createdAt, s.tracker.Snapshot(ctx), st))
	if err != nil {
		return "", err
	}

	key := keyPrefix + createdAt.Format(keyLayout) + keySuffix

	if err := s.store.Put(ctx, key, payload); err != nil {
		return "", fmt.Errorf("uploading backup: %w", err)
	}

	slog.Info("backup uploaded", "key", key, "bytes", len(payload))

	return key, nil
}

// List returns the backup keys, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	keys = slices.DeleteFunc(keys, func(k string) bool {
		return !strings.HasSuffix(k, keySuffix)
	})

	// The timestamp layout sorts lexically.
	slices.Sort(keys)
	slices.Reverse(keys)

	return keys, nil
}

// Restore replaces the collections and settings with the contents of key.
// The settings are checked before anything is written.
func (s *Service) Restore(ctx context.Context, key string) error {
	payload, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("downloading backup: %w", err)
	}

	doc, err := decode(payload)
	if err != nil {
		return err
	}

	snap, st := doc.snapshot()

	if err := st.Validate(); err != nil {
		return fmt.Errorf("restoring settings: %w", err)
	}

	if err := s.tracker.Restore(ctx, snap); err != nil {
		return fmt.Errorf("restoring collections: %w", err)
	}

	if err := s.settings.Update(ctx, st); err != nil {
		return fmt.Errorf("restoring settings: %w", err)
	}

	slog.Info("backup restored", "key", key, "created_at", doc.CreatedAt, "deals", len(snap.Deals))

	return nil
}
