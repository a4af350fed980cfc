// Package store persists enriched universities to a JSON file, SQLite, or
// Postgres.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/uni-enrich/internal/model"
)

// Saver writes the full current result list. Each call overwrites what the
// previous call wrote for the same universities.
type Saver interface {
	Save(ctx context.Context, unis []model.University) error
}

// Loader reads back what was saved. A store with nothing saved returns an
// empty list.
type Loader interface {
	Load(ctx context.Context) ([]model.University, error)
}

// Store is a Saver and Loader with a lifecycle.
type Store interface {
	Saver
	Loader
	Close() error
}

// Driver names.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a store.
type Options struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	Path        string      `yaml:"path" mapstructure:"path"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	Pool        *PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Open creates the store named by opts.Driver. jsonPath is the output file
// used by the json driver; SQL drivers are migrated before returning.
func Open(ctx context.Context, opts Options, jsonPath string) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverJSON:
		return NewJSONFile(jsonPath), nil
	case DriverSQLite:
		s, err := NewSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgres(ctx, opts.DatabaseURL, opts.Pool)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", opts.Driver)
	}
}

// Columns of the universities table, in insert order. domain holds the
// normalized key used for upserts; source_domain keeps the domain as given.
var columns = []string{
	"domain", "position", "name", "city", "country", "country_code",
	"linkedin_url", "student_population", "university_type", "language_centre",
	"tech_stack", "run_id", "enriched_at", "source_domain",
}

// loadQuery reads rows back in saved order. Rows written before
// source_domain existed fall back to the key.
const loadQuery = `SELECT COALESCE(NULLIF(source_domain, ''), domain), name, city, country, country_code,
	linkedin_url, student_population, university_type, language_centre, tech_stack
FROM universities ORDER BY position, domain`

// typeString flattens the named enum for the SQL drivers.
func typeString(t *model.UniversityType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// typeFromString is the inverse of typeString.
func typeFromString(s *string) *model.UniversityType {
	if s == nil {
		return nil
	}
	t := model.UniversityType(*s)
	return &t
}
