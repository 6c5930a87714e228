package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"spacerh.dev/internal/hr"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store implements hr.Store on PostgreSQL via database/sql.
type Store struct {
	db *sql.DB
}

var _ hr.Store = (*Store)(nil)

// Open connects to PostgreSQL with pool defaults tuned for the API.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests and cmd/migrate.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() hr.UserStore        { return (*userStore)(s) }
func (s *Store) Companies() hr.CompanyStore { return (*companyStore)(s) }
func (s *Store) Requests() hr.RequestStore  { return (*requestStore)(s) }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapWriteError converts driver-level constraint failures to domain errors.
func mapWriteError(err error) error {
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return hr.ErrConflict
		case pgErrForeignKeyViolation:
			return hr.ErrNotFound
		}
	}
	return err
}
