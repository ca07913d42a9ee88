package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/timus-feed/internal/crypto"
)

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendGist     = "gist"
)

// Options selects and configures a backend
type Options struct {
	Backend       string
	DataDir       string
	SQLitePath    string
	DatabaseURL   string
	Redis         RedisConfig
	GistID        string
	GitHubToken   string
	EncryptionKey string
}

// Open builds the configured backend. When EncryptionKey is set the store
// seals snapshots at rest.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		s, err = NewFileStore(opts.DataDir)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendSQLite:
		s, err = OpenSQLite(ctx, opts.SQLitePath)
	case BackendPostgres:
		s, err = OpenPostgres(ctx, opts.DatabaseURL)
	case BackendRedis:
		s, err = OpenRedis(ctx, opts.Redis)
	case BackendGist:
		s, err = NewGistStore(opts.GistID, opts.GitHubToken)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	return Sealed(s, crypto.NewEncryptor(opts.EncryptionKey)), nil
}
