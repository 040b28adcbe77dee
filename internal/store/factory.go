package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/credential"
	"github.com/loykin/servicecall/internal/store/postgresql"
	"github.com/loykin/servicecall/internal/store/sqlite"
)

// Storage types accepted by Config.Type.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config selects and configures the credential storage backend.
type Config struct {
	Type     string            `mapstructure:"type" yaml:"type"`
	Table    string            `mapstructure:"table" yaml:"table"`
	SQLite   sqlite.Config     `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres postgresql.Config `mapstructure:"postgres" yaml:"postgres"`
}

// DecodeConfig decodes a loosely typed map, as found in embedded configs.
func DecodeConfig(m map[string]interface{}) (Config, error) {
	var c Config
	if err := mapstructure.Decode(m, &c); err != nil {
		return Config{}, fmt.Errorf("store: decode config: %w", err)
	}
	return c, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured storage. The returned closer releases database
// handles and is always non-nil on success.
func Open(ctx context.Context, c Config) (credential.Storage, io.Closer, error) {
	table := strings.TrimSpace(c.Table)
	if table == "" {
		table = constants.DefaultStorageTable
	}

	typ := strings.ToLower(strings.TrimSpace(c.Type))
	logger := common.GetLogger().WithComponent("store")

	var dialect Dialect
	var dsn string
	switch typ {
	case "", TypeMemory:
		logger.Debug("using in-memory credential storage")
		return credential.NewMemoryStorage(), nopCloser{}, nil
	case TypeSQLite:
		dialect = sqlite.NewDialect()
		dsn = c.SQLite.ToDSN()
	case TypePostgres, "postgresql":
		dialect = postgresql.NewDialect()
		dsn = c.Postgres.ToDSN()
		if dsn == "" {
			return nil, nil, fmt.Errorf("store: postgres requires dsn or host")
		}
	default:
		return nil, nil, fmt.Errorf("store: unsupported type %q", c.Type)
	}

	db, err := dialect.Connect(dsn)
	if err != nil {
		return nil, nil, err
	}
	s, err := NewSQLStore(ctx, db, dialect, table)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("credential storage ready", "store", dialect.DriverName(), "table", table)
	return s, s, nil
}
