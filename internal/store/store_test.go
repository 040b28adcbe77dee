package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/loykin/servicecall/internal/credential"
	"github.com/loykin/servicecall/internal/store/postgresql"
	"github.com/loykin/servicecall/internal/store/sqlite"
)

func TestValidateTableName(t *testing.T) {
	ok := []string{"local_storage", "_t", "Auth2"}
	bad := []string{"", "1abc", "a-b", "a;drop table x", "a b"}
	for _, n := range ok {
		if err := ValidateTableName(n); err != nil {
			t.Fatalf("ValidateTableName(%q) unexpected error: %v", n, err)
		}
	}
	for _, n := range bad {
		if err := ValidateTableName(n); err == nil {
			t.Fatalf("ValidateTableName(%q) expected error", n)
		}
	}
}

func TestOpen_MemoryDefault(t *testing.T) {
	st, closer, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = closer.Close() }()
	if _, ok := st.(*credential.MemoryStorage); !ok {
		t.Fatalf("expected memory storage, got %T", st)
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, _, err := Open(context.Background(), Config{Type: "mongo"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	if _, _, err := Open(context.Background(), Config{Type: TypePostgres}); err == nil {
		t.Fatalf("expected error when postgres has no dsn")
	}
}

func TestSQLiteStore_KeyValue(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")
	st, closer, err := Open(ctx, Config{Type: TypeSQLite, SQLite: sqlite.Config{Path: path}})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}

	if _, err := st.Get(ctx, "auth"); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := st.Set(ctx, "auth", "blob-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, "auth", "blob-2"); err != nil {
		t.Fatalf("Set replace: %v", err)
	}
	_ = closer.Close()

	// value survives reopening the file
	st, closer, err = Open(ctx, Config{Type: TypeSQLite, SQLite: sqlite.Config{Path: path}})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = closer.Close() }()
	v, err := st.Get(ctx, "auth")
	if err != nil || v != "blob-2" {
		t.Fatalf("Get => %q,%v; want blob-2,nil", v, err)
	}
	if err := st.Remove(ctx, "auth"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := st.Remove(ctx, "auth"); err != nil {
		t.Fatalf("Remove missing should be nil, got %v", err)
	}
	if _, err := st.Get(ctx, "auth"); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("want ErrNotFound after remove, got %v", err)
	}
}

func TestSQLiteStore_WithAccessor(t *testing.T) {
	ctx := context.Background()
	st, closer, err := Open(ctx, Config{Type: TypeSQLite})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = closer.Close() }()

	codec, err := credential.NewCodec("secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	acc := credential.NewAccessor(st, codec)
	if err := acc.Save(ctx, credential.Credential{Token: "abc", TokenType: "Bearer"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, ok, err := acc.Load(ctx)
	if err != nil || !ok || c.Token != "abc" {
		t.Fatalf("Load => %+v,%v,%v", c, ok, err)
	}
}

func TestSQLStore_PostgresDialectQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	d := postgresql.NewDialect()
	mock.ExpectExec(regexp.QuoteMeta(d.EnsureStatement("creds"))).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO creds(key, value, updated_at) VALUES($1, $2, $3)")).
		WithArgs("auth", "blob", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM creds WHERE key = $1")).
		WithArgs("auth").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("blob"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM creds WHERE key = $1")).
		WithArgs("auth").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	st, err := NewSQLStore(ctx, db, d, "creds")
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	if err := st.Set(ctx, "auth", "blob"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := st.Get(ctx, "auth")
	if err != nil || v != "blob" {
		t.Fatalf("Get => %q,%v", v, err)
	}
	if err := st.Remove(ctx, "auth"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStore_RetriesTransientErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	d := postgresql.NewDialect()
	mock.ExpectExec(regexp.QuoteMeta(d.EnsureStatement("creds"))).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM creds").WithArgs("auth").WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectExec("DELETE FROM creds").WithArgs("auth").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	st, err := NewSQLStore(ctx, db, d, "creds")
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	if err := st.Remove(ctx, "auth"); err != nil {
		t.Fatalf("Remove should succeed after retry: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStore_NoRetryOnPermanentError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	d := sqlite.NewDialect()
	mock.ExpectExec(regexp.QuoteMeta(d.EnsureStatement("creds"))).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO creds").WillReturnError(errors.New("syntax error"))

	ctx := context.Background()
	st, err := NewSQLStore(ctx, db, d, "creds")
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	if err := st.Set(ctx, "auth", "x"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecodeConfig(t *testing.T) {
	c, err := DecodeConfig(map[string]interface{}{
		"type":  "sqlite",
		"table": "kv",
		"sqlite": map[string]interface{}{
			"path": "/tmp/x.db",
		},
	})
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if c.Type != "sqlite" || c.Table != "kv" || c.SQLite.Path != "/tmp/x.db" {
		t.Fatalf("unexpected config: %+v", c)
	}
}
