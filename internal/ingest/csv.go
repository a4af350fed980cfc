// Package ingest reads university lists from the world-universities CSV
// dataset, JSON or YAML files, or the built-in seed list.
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/model"
)

// csvHeader names the columns of the headerless dataset.
var csvHeader = []string{"country_code", "name", "website"}

// csvRow is one dataset row.
type csvRow struct {
	CountryCode string `csv:"country_code"`
	Name        string `csv:"name"`
	Website     string `csv:"website"`
}

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeDomain strips the scheme and a trailing slash from a website.
func NormalizeDomain(website string) string {
	d := schemeRe.ReplaceAllString(strings.TrimSpace(website), "")
	return strings.TrimSuffix(d, "/")
}

// ReadCSV opens path and parses it with ParseCSV.
func ReadCSV(path string, countries *Countries) ([]model.University, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ParseCSV(f, countries)
}

// ParseCSV reads headerless country_code,name,website rows, keeping those whose
// country resolves in countries and whose website is non-empty. Malformed rows
// are skipped.
func ParseCSV(r io.Reader, countries *Countries) ([]model.University, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(reader, csvHeader...)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: csv decoder")
	}

	var (
		unis    []model.University
		rows    int
		skipped int
	)
	for {
		var row csvRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		rows++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.Is(err, csvutil.ErrFieldCount) || errors.As(err, &parseErr) {
				skipped++
				zap.L().Debug("ingest: skipping malformed row", zap.Int("row", rows), zap.Error(err))
				continue
			}
			return nil, eris.Wrapf(err, "ingest: read csv row %d", rows)
		}

		country, ok := countries.Resolve(row.CountryCode)
		if !ok {
			continue
		}
		domain := NormalizeDomain(row.Website)
		if domain == "" {
			continue
		}
		unis = append(unis, model.University{
			Name:        strings.TrimSpace(row.Name),
			Domain:      domain,
			Country:     country.Name,
			CountryCode: country.Code,
		})
	}

	zap.L().Info("ingest: parsed csv",
		zap.Int("rows", rows),
		zap.Int("skipped", skipped),
		zap.Int("universities", len(unis)),
	)
	LogDistribution(unis)
	return unis, nil
}

// CountryCount is the number of universities from one country.
type CountryCount struct {
	Country string
	Count   int
}

// Distribution counts universities per country, largest first.
func Distribution(unis []model.University) []CountryCount {
	counts := make(map[string]int)
	for _, u := range unis {
		country := u.Country
		if country == "" {
			country = "Unknown"
		}
		counts[country]++
	}

	out := make([]CountryCount, 0, len(counts))
	for country, n := range counts {
		out = append(out, CountryCount{Country: country, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// LogDistribution logs the per-country counts.
func LogDistribution(unis []model.University) {
	for _, cc := range Distribution(unis) {
		zap.L().Info("ingest: universities by country",
			zap.String("country", cc.Country),
			zap.Int("count", cc.Count),
		)
	}
}
