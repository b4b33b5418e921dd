// Package store persists the serialized opened-window entry of each profile.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/advent-kalender/internal/config"
)

// StorageKey is the name of the persisted entry, kept from the browser version
const StorageKey = "adventOpenedWindows"

var (
	// ErrNotFound is returned when a profile has no stored entry
	ErrNotFound = errors.New("store: entry not found")
	// ErrInvalidProfile is returned for profile ids that are not UUIDs
	ErrInvalidProfile = errors.New("store: invalid profile id")
)

// Store keeps one opaque entry per profile
type Store interface {
	Load(ctx context.Context, profile string) ([]byte, error)
	Save(ctx context.Context, profile string, data []byte) error
	Delete(ctx context.Context, profile string) error
	Close() error
}

// NewProfileID returns a fresh random profile id
func NewProfileID() string {
	return uuid.NewString()
}

// ValidateProfile checks that profile is a UUID, which also keeps it safe as a file name
func ValidateProfile(profile string) error {
	id, err := uuid.Parse(profile)
	if err != nil || id.String() != profile {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	return nil
}

// Open builds the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return OpenSQLite(ctx, filepath.Join(cfg.Path, "advent.db"))
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
