package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/db"
	"github.com/sells-group/uni-enrich/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	runID   string
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, runID: uuid.New().String()}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS universities (
	domain             TEXT PRIMARY KEY,
	position           INTEGER NOT NULL,
	name               TEXT NOT NULL,
	city               TEXT NOT NULL DEFAULT '',
	country            TEXT NOT NULL DEFAULT '',
	country_code       TEXT NOT NULL DEFAULT '',
	linkedin_url       TEXT,
	student_population INTEGER CHECK (student_population >= 0),
	university_type    TEXT CHECK (university_type IN ('public', 'private')),
	language_centre    BOOLEAN,
	tech_stack         TEXT[],
	run_id             TEXT NOT NULL,
	enriched_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	source_domain      TEXT NOT NULL DEFAULT ''
);

ALTER TABLE universities ADD COLUMN IF NOT EXISTS source_domain TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_universities_country_code ON universities(country_code);
CREATE INDEX IF NOT EXISTS idx_universities_run_id ON universities(run_id);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// RunID identifies the rows written by this store instance.
func (s *PostgresStore) RunID() string { return s.runID }

// Save bulk-upserts every university by domain.
func (s *PostgresStore) Save(ctx context.Context, unis []model.University) error {
	now := time.Now().UTC()
	rows := make([][]any, len(unis))
	for i, u := range unis {
		rows[i] = []any{
			u.Key(), int32(i), u.Name, u.City, u.Country, u.CountryCode,
			u.LinkedInURL, u.StudentPopulation, typeString(u.Type), u.LanguageCentre,
			u.TechStack, s.runID, now, u.Domain,
		}
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "universities",
		Columns:      columns,
		ConflictKeys: []string{"domain"},
	}, rows)
	if err != nil {
		return eris.Wrap(err, "postgres: save universities")
	}

	zap.L().Info("saved universities", zap.Int64("rows", n), zap.String("store", DriverPostgres))
	return nil
}

// Load returns all stored universities in saved order.
func (s *PostgresStore) Load(ctx context.Context) ([]model.University, error) {
	rows, err := s.pool.Query(ctx, loadQuery)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load universities")
	}
	defer rows.Close()

	var unis []model.University
	for rows.Next() {
		var (
			u   model.University
			typ *string
		)
		if err := rows.Scan(&u.Domain, &u.Name, &u.City, &u.Country, &u.CountryCode,
			&u.LinkedInURL, &u.StudentPopulation, &typ, &u.LanguageCentre, &u.TechStack); err != nil {
			return nil, eris.Wrap(err, "postgres: scan university")
		}
		u.Type = typeFromString(typ)
		unis = append(unis, u)
	}
	return unis, eris.Wrap(rows.Err(), "postgres: iterate universities")
}
