package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drstein77/storefront/internal/models"
	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

var errNoPool = errors.New("database connection pool is nil")

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// DBKeeper records price observations of fetched catalog pages.
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to dsn and brings the schema up to date. It returns
// nil when the database is not configured or not usable.
func NewDBKeeper(ctx context.Context, dsn func() string, log Log) *DBKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty, price observations are disabled")
		return nil
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		log.Error("Unable to parse database DSN: ", zap.Error(err))
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Unable to connect to database: ", zap.Error(err))
		return nil
	}

	if err := migrateUp(config.ConnConfig, migrationsDir()); err != nil {
		log.Error("Error while performing migration: ", zap.Error(err))
		pool.Close()
		return nil
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}
}

func migrateUp(connConfig *pgx.ConnConfig, dir string) error {
	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("getting driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrationsDir finds the migrations directory from the working directory or
// the module root, so that tests run from a package directory work too.
func migrationsDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "migrations"
	}
	for _, candidate := range []string{
		filepath.Join(dir, "migrations"),
		filepath.Join(dir, "..", "..", "migrations"),
	} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(dir, "migrations")
}

// RecordObservations stores one row per product in a single transaction.
func (kp *DBKeeper) RecordObservations(ctx context.Context, products []models.Product) (err error) {
	if len(products) == 0 {
		return nil
	}
	if kp == nil || kp.pool == nil {
		return errNoPool
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		kp.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	stmt := `
		INSERT INTO price_observations (product_id, title, category, brand, price, rating, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	observedAt := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(stmt, string(p.ID), p.Title, p.Category, p.Brand, p.Price, p.Rating, observedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range products {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			err = fmt.Errorf("failed to execute batch query: %w", execErr)
			return err
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		err = fmt.Errorf("failed to close batch results: %w", closeErr)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		return err
	}

	kp.log.Info("price observations recorded", zap.Int("count", len(products)))
	return nil
}

// Summary aggregates everything recorded so far.
func (kp *DBKeeper) Summary(ctx context.Context) (*models.ProcessResponse, error) {
	if kp == nil || kp.pool == nil {
		return nil, errNoPool
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var resp models.ProcessResponse
	row := kp.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT category), COALESCE(SUM(price), 0)::float8
		FROM price_observations
	`)
	if err := row.Scan(&resp.TotalItems, &resp.TotalCategories, &resp.TotalPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.ProcessResponse{}, nil
		}
		return nil, fmt.Errorf("failed to calculate stats: %w", err)
	}
	return &resp, nil
}

// History returns the observations of one product, newest first.
func (kp *DBKeeper) History(ctx context.Context, id models.ProductID) ([]models.Observation, error) {
	if kp == nil || kp.pool == nil {
		return nil, errNoPool
	}

	rows, err := kp.pool.Query(ctx, `
		SELECT product_id, title, category, brand, price::float8, rating, observed_at
		FROM price_observations
		WHERE product_id = $1
		ORDER BY observed_at DESC
	`, string(id))
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	out := []models.Observation{}
	for rows.Next() {
		var (
			o   models.Observation
			pid string
		)
		if err := rows.Scan(&pid, &o.Title, &o.Category, &o.Brand, &o.Price, &o.Rating, &o.ObservedAt); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		o.ProductID = models.ProductID(pid)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	if kp == nil || kp.pool == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp != nil && kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	return false
}
