// Package credential persists the session credential between client runs.
package credential

import (
	"context"
	"fmt"
	"log/slog"

	"writex/internal/config"
)

// Key is the fixed name the credential token is stored under.
const Key = "token"

// Store persists a single credential token. Load returns "" with a nil error
// when no credential has been saved.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.CredentialStore.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.CredentialStore {
	case config.CredentialStoreMemory:
		return NewMemoryStore(), nil
	case config.CredentialStoreRedis:
		return OpenRedisStore(ctx, cfg.RedisURL)
	case config.CredentialStoreSQL:
		return OpenSQLStore(cfg.CredentialDSN, logger)
	case config.CredentialStoreFile, "":
		path := cfg.CredentialPath
		if path == "" {
			var err error
			if path, err = DefaultFilePath(); err != nil {
				return nil, err
			}
		}
		return NewFileStore(path, logger), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}
