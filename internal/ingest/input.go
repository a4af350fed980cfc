package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/uni-enrich/internal/model"
)

// Seeds returns the built-in sample universities.
func Seeds() []model.University {
	return []model.University{
		{Domain: "uba.ar", Name: "Universidad de Buenos Aires"},
		{Domain: "unam.mx", Name: "Universidad Nacional Autónoma de México"},
		{Domain: "puc.cl", Name: "Pontificia Universidad Católica de Chile"},
	}
}

// yamlUniversity is the YAML shape of an input record.
type yamlUniversity struct {
	Name        string `yaml:"name"`
	Domain      string `yaml:"domain"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	CountryCode string `yaml:"country_code"`
}

// ReadUniversities loads a list of universities from a JSON or YAML file,
// chosen by extension. Domains are normalized and records without one are
// dropped. JSON input may be a previous output file; enrichment fields are kept.
func ReadUniversities(path string) ([]model.University, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var unis []model.University
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var recs []yamlUniversity
		if err := yaml.Unmarshal(data, &recs); err != nil {
			return nil, eris.Wrapf(err, "ingest: parse yaml %s", path)
		}
		for _, r := range recs {
			unis = append(unis, model.University{
				Name:        r.Name,
				Domain:      r.Domain,
				City:        r.City,
				Country:     r.Country,
				CountryCode: r.CountryCode,
			})
		}
	default:
		if err := json.Unmarshal(data, &unis); err != nil {
			return nil, eris.Wrapf(err, "ingest: parse json %s", path)
		}
	}

	out := unis[:0]
	for _, u := range unis {
		u.Name = strings.TrimSpace(u.Name)
		u.Domain = NormalizeDomain(u.Domain)
		if u.Domain == "" {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
