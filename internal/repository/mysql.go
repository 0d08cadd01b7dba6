package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/db"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements Store on top of the instrumented MySQL pool.
type MySQLStore struct {
	db      *db.DB
	q       querier
	metrics *metrics.AppMetrics
	log     *logger.Logger
	cache   *ProductCache

	inTx        bool
	afterCommit *[]func(context.Context)
}

// Option configures a MySQLStore
type Option func(*MySQLStore)

// WithProductCache serves product lookups through a redis cache.
func WithProductCache(c *ProductCache) Option {
	return func(s *MySQLStore) { s.cache = c }
}

// NewMySQLStore creates a store on the given database
func NewMySQLStore(database *db.DB, m *metrics.AppMetrics, log *logger.Logger, opts ...Option) *MySQLStore {
	s := &MySQLStore{
		db:      database,
		q:       database.DB,
		metrics: m,
		log:     log.With("component", "mysql_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MySQLStore) Users() UserRepository { return &mysqlUsers{s} }
func (s *MySQLStore) Companies() CompanyRepository { return &mysqlCompanies{s} }
func (s *MySQLStore) Shops() ShopRepository { return &mysqlShops{s} }
func (s *MySQLStore) Categories() CategoryRepository { return &mysqlCategories{s} }
func (s *MySQLStore) Containers() ContainerRepository { return &mysqlContainers{s} }
func (s *MySQLStore) Ratings() RatingRepository { return &mysqlRatings{s} }
func (s *MySQLStore) Interactions() InteractionRepository { return &mysqlInteractions{s} }

func (s *MySQLStore) Products() ProductRepository {
	var repo ProductRepository = &mysqlProducts{s}
	if s.cache != nil {
		repo = s.cache.Wrap(repo, s.onCommit)
	}
	return repo
}

// InTx implements Store
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	var hooks []func(context.Context)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&MySQLStore{
			db:          s.db,
			q:           tx,
			metrics:     s.metrics,
			log:         s.log,
			cache:       s.cache,
			inTx:        true,
			afterCommit: &hooks,
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}
	return nil
}

// onCommit runs h now, or after the surrounding transaction commits.
func (s *MySQLStore) onCommit(ctx context.Context, h func(context.Context)) {
	if s.inTx {
		*s.afterCommit = append(*s.afterCommit, h)
		return
	}
	h(ctx)
}

func (s *MySQLStore) record(ctx context.Context, operation, table, query string, start time.Time, err error) {
	s.metrics.RecordDBQuery(ctx, operation, table, query, start, err == nil || errors.Is(err, sql.ErrNoRows))
}

// exec runs a write statement and maps duplicate-key violations to ErrDuplicate.
func (s *MySQLStore) exec(ctx context.Context, operation, table, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.q.ExecContext(ctx, query, args...)
	s.record(ctx, operation, table, query, start, err)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return nil, fmt.Errorf("%s %s: %w", operation, table, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to %s %s: %w", operation, table, err)
	}
	return res, nil
}

// execAffecting runs a write statement and returns the number of affected rows.
func (s *MySQLStore) execAffecting(ctx context.Context, operation, table, query string, args ...any) (int64, error) {
	res, err := s.exec(ctx, operation, table, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// queryRow runs a single row SELECT and maps sql.ErrNoRows to ErrNotFound.
func (s *MySQLStore) queryRow(ctx context.Context, table, query string, args []any, dest ...any) error {
	start := time.Now()
	err := s.q.QueryRowContext(ctx, query, args...).Scan(dest...)
	s.record(ctx, "SELECT", table, query, start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	return nil
}

func (s *MySQLStore) count(ctx context.Context, table, query string, args ...any) (int64, error) {
	var n int64
	if err := s.queryRow(ctx, table, query, args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func insertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert ID: %w", err)
	}
	return id, nil
}

func (s *MySQLStore) query(ctx context.Context, table, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.q.QueryContext(ctx, query, args...)
	s.record(ctx, "SELECT", table, query, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return rows, nil
}
