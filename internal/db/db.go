package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/XSAM/otelsql"
	"github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// mysqlDuplicateEntry is the server error number for a UNIQUE key violation.
const mysqlDuplicateEntry = 1062

// DB wraps the database connection with metrics
type DB struct {
	*sql.DB
	log              *logger.Logger
	connectionActive metric.Int64Gauge
	connectionIdle   metric.Int64Gauge
	serviceName      string
}

// NewDB creates a new database connection with OpenTelemetry instrumentation
func NewDB(dsn string, meter metric.Meter, serviceName string, log *logger.Logger) (*DB, error) {
	driverName, err := otelsql.Register("mysql",
		otelsql.WithAttributes(
			attribute.String("db.system", "mysql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	connectionActive, err := meter.Int64Gauge(
		"db.client.connections.active",
		metric.WithDescription("Number of active database connections"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection active gauge: %w", err)
	}

	connectionIdle, err := meter.Int64Gauge(
		"db.client.connections.idle",
		metric.WithDescription("Number of idle database connections"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection idle gauge: %w", err)
	}

	dbWrapper := &DB{
		DB:               db,
		log:              log,
		connectionActive: connectionActive,
		connectionIdle:   connectionIdle,
		serviceName:      serviceName,
	}

	// Register otelsql's built-in stats reporting
	if err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("service.name", serviceName),
	)); err != nil {
		log.Warn("failed to register otelsql stats metrics", "error", err)
	}

	return dbWrapper, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// RecordPoolStats publishes the current pool usage on the connection gauges
func (db *DB) RecordPoolStats(ctx context.Context) {
	stats := db.Stats()
	attrs := metric.WithAttributes(attribute.String("service.name", db.serviceName))
	db.connectionActive.Record(ctx, int64(stats.InUse), attrs)
	db.connectionIdle.Record(ctx, int64(stats.Idle), attrs)
}

// WithTx runs fn inside a transaction, committing when fn returns nil
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsDuplicateEntry reports whether err is a MySQL UNIQUE key violation
func IsDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// InitSchema initializes the database schema
// It splits the SQL into individual statements and executes them one by one
func (db *DB) InitSchema(ctx context.Context, schemaSQL string) error {
	statements := splitSQLStatements(schemaSQL)

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w\nStatement: %s", i+1, err, stmt)
		}
	}

	db.log.Info("database schema initialized", "statements", len(statements))
	return nil
}

// splitSQLStatements splits a SQL string into individual statements,
// dropping full-line "--" comments and empty statements
func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			cleanedLines = append(cleanedLines, line)
		}
	}

	statements := strings.Split(strings.Join(cleanedLines, "\n"), ";")

	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
