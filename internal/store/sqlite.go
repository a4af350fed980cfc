package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/uni-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, runID: uuid.New().String()}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS universities (
	domain             TEXT PRIMARY KEY,
	position           INTEGER NOT NULL,
	name               TEXT NOT NULL,
	city               TEXT NOT NULL DEFAULT '',
	country            TEXT NOT NULL DEFAULT '',
	country_code       TEXT NOT NULL DEFAULT '',
	linkedin_url       TEXT,
	student_population INTEGER,
	university_type    TEXT CHECK (university_type IN ('public', 'private')),
	language_centre    BOOLEAN,
	tech_stack         TEXT,
	run_id             TEXT NOT NULL,
	enriched_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	source_domain      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_universities_country_code ON universities(country_code);
CREATE INDEX IF NOT EXISTS idx_universities_run_id ON universities(run_id);
`

// Migrate creates the schema and adds source_domain to tables created
// without it.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('universities') WHERE name = 'source_domain'`).Scan(&n)
	if err != nil {
		return eris.Wrap(err, "sqlite: inspect schema")
	}
	if n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx, `ALTER TABLE universities ADD COLUMN source_domain TEXT NOT NULL DEFAULT ''`)
	return eris.Wrap(err, "sqlite: add source_domain")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunID identifies the rows written by this store instance.
func (s *SQLiteStore) RunID() string { return s.runID }

// Save upserts every university by domain in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, unis []model.University) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	updates := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		updates = append(updates, c+" = excluded."+c)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO universities (`+strings.Join(columns, ", ")+`) VALUES (`+placeholders+`)
		ON CONFLICT(domain) DO UPDATE SET `+strings.Join(updates, ", "))
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for i, u := range unis {
		var techStack *string
		if u.TechStack != nil {
			b, err := json.Marshal(u.TechStack)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal tech stack")
			}
			ts := string(b)
			techStack = &ts
		}
		_, err := stmt.ExecContext(ctx,
			u.Key(), i, u.Name, u.City, u.Country, u.CountryCode,
			u.LinkedInURL, u.StudentPopulation, typeString(u.Type), u.LanguageCentre,
			techStack, s.runID, now, u.Domain,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert %s", u.Domain)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	zap.L().Info("saved universities", zap.Int("count", len(unis)), zap.String("store", DriverSQLite))
	return nil
}

// Load returns all stored universities in saved order.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.University, error) {
	rows, err := s.db.QueryContext(ctx, loadQuery)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load universities")
	}
	defer rows.Close() //nolint:errcheck

	var unis []model.University
	for rows.Next() {
		var (
			u         model.University
			linkedIn  sql.NullString
			pop       sql.NullInt64
			typ       sql.NullString
			lc        sql.NullBool
			techStack sql.NullString
		)
		if err := rows.Scan(&u.Domain, &u.Name, &u.City, &u.Country, &u.CountryCode,
			&linkedIn, &pop, &typ, &lc, &techStack); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan university")
		}
		if linkedIn.Valid {
			u.LinkedInURL = &linkedIn.String
		}
		if pop.Valid {
			n := int(pop.Int64)
			u.StudentPopulation = &n
		}
		if typ.Valid {
			u.Type = typeFromString(&typ.String)
		}
		if lc.Valid {
			u.LanguageCentre = &lc.Bool
		}
		if techStack.Valid {
			if err := json.Unmarshal([]byte(techStack.String), &u.TechStack); err != nil {
				return nil, eris.Wrapf(err, "sqlite: parse tech stack for %s", u.Domain)
			}
		}
		unis = append(unis, u)
	}
	return unis, eris.Wrap(rows.Err(), "sqlite: iterate universities")
}
