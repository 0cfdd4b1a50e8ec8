// pkg/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/config"
)

// PostgresStore implements the Store interface on PostgreSQL. Entities
// live in hr_nodes as jsonb attribute bags; relationships live in
// hr_edges. Both tables are tenant scoped.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.StoreConfig
}

// NewPostgresStore creates and initializes a PostgreSQL-backed store
func NewPostgresStore(ctx context.Context, cfg *config.StoreConfig) (*PostgresStore, error) {
	logger := zap.L().Named("postgres-store")

	logger.Info("Connecting to graph store",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Set statement timeout if configured
	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	s := &PostgresStore{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	if err := s.ensureTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare store tables: %w", err)
	}

	return s, nil
}

// ensureTables creates the node and edge tables if they do not exist
func (s *PostgresStore) ensureTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS hr_nodes (
			id BIGSERIAL PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			attrs JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS hr_nodes_tenant_type_idx
			ON hr_nodes (tenant_id, entity_type)`,
		`CREATE INDEX IF NOT EXISTS hr_nodes_attrs_idx
			ON hr_nodes USING GIN (attrs)`,
		`CREATE TABLE IF NOT EXISTS hr_edges (
			id BIGSERIAL PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			from_id BIGINT NOT NULL,
			rel_type TEXT NOT NULL,
			to_id BIGINT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS hr_edges_tenant_from_idx
			ON hr_edges (tenant_id, from_id, rel_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	s.logger.Info("Ensured store tables exist")
	return nil
}

// Create inserts an entity and returns its assigned identifier
func (s *PostgresStore) Create(
	ctx context.Context,
	tenantID, entityType string,
	fields map[string]interface{},
) (string, error) {
	if tenantID == "" {
		return "", errors.New("tenant id is required")
	}

	attrs, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode entity attributes: %w", err)
	}

	var id int64
	err = s.db.QueryRowxContext(ctx,
		`INSERT INTO hr_nodes (tenant_id, entity_type, attrs)
		 VALUES ($1, $2, $3) RETURNING id`,
		tenantID, entityType, attrs,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create %s entity: %w", entityType, err)
	}

	return strconv.FormatInt(id, 10), nil
}

// Match finds at most one entity whose attributes contain the predicate
func (s *PostgresStore) Match(
	ctx context.Context,
	tenantID, entityType string,
	predicate map[string]interface{},
) (*Record, error) {
	if tenantID == "" {
		return nil, errors.New("tenant id is required")
	}

	cond, err := json.Marshal(predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match predicate: %w", err)
	}

	var (
		id    int64
		attrs []byte
	)
	err = s.db.QueryRowxContext(ctx,
		`SELECT id, attrs FROM hr_nodes
		 WHERE tenant_id = $1 AND entity_type = $2 AND attrs @> $3
		 ORDER BY id LIMIT 1`,
		tenantID, entityType, cond,
	).Scan(&id, &attrs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match %s entity: %w", entityType, err)
	}

	rec := &Record{
		ID:         strconv.FormatInt(id, 10),
		EntityType: entityType,
	}
	if err := json.Unmarshal(attrs, &rec.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode entity attributes: %w", err)
	}

	return rec, nil
}

// MatchByID looks up one entity by its identifier within a tenant
func (s *PostgresStore) MatchByID(
	ctx context.Context,
	tenantID, entityType, id string,
) (*Record, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid entity identifier %q", id)
	}

	var attrs []byte
	err = s.db.QueryRowxContext(ctx,
		`SELECT attrs FROM hr_nodes
		 WHERE tenant_id = $1 AND entity_type = $2 AND id = $3`,
		tenantID, entityType, numericID,
	).Scan(&attrs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s entity: %w", entityType, err)
	}

	rec := &Record{ID: id, EntityType: entityType}
	if err := json.Unmarshal(attrs, &rec.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode entity attributes: %w", err)
	}

	return rec, nil
}

// UpdateRelationship replaces an outgoing relationship inside a transaction
func (s *PostgresStore) UpdateRelationship(
	ctx context.Context,
	tenantID, fromID, relType, toID string,
) error {
	if tenantID == "" {
		return errors.New("tenant id is required")
	}

	from, err := strconv.ParseInt(fromID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid source identifier %q", fromID)
	}
	to, err := strconv.ParseInt(toID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid target identifier %q", toID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM hr_edges
		 WHERE tenant_id = $1 AND from_id = $2 AND rel_type = $3`,
		tenantID, from, relType,
	)
	if err != nil {
		return fmt.Errorf("failed to clear existing relationship: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO hr_edges (tenant_id, from_id, rel_type, to_id)
		 VALUES ($1, $2, $3, $4)`,
		tenantID, from, relType, to,
	)
	if err != nil {
		return fmt.Errorf("failed to insert relationship: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE hr_nodes SET updated_at = CURRENT_TIMESTAMP
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID, from,
	)
	if err != nil {
		return fmt.Errorf("failed to touch source entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relationship update: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	s.logger.Info("Closing store connection")
	return s.db.Close()
}
