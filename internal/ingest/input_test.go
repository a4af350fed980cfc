package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeds(t *testing.T) {
	seeds := Seeds()
	require.Len(t, seeds, 3)
	assert.Equal(t, "uba.ar", seeds[0].Domain)
	assert.Equal(t, "unam.mx", seeds[1].Domain)
	assert.Equal(t, "puc.cl", seeds[2].Domain)
	for _, s := range seeds {
		assert.NotEmpty(t, s.Name)
		assert.False(t, s.Enriched())
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadUniversities_JSON(t *testing.T) {
	path := writeFile(t, "in.json", `[
  {"name": "Universidad de Buenos Aires", "domain": "https://uba.ar/", "student_population": 150000},
  {"name": "No domain", "domain": ""}
]`)

	unis, err := ReadUniversities(path)
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "uba.ar", unis[0].Domain)
	require.NotNil(t, unis[0].StudentPopulation)
	assert.Equal(t, 150000, *unis[0].StudentPopulation)
}

func TestReadUniversities_YAML(t *testing.T) {
	path := writeFile(t, "in.yaml", `
- name: Universidad de la República
  domain: udelar.edu.uy
  country: Uruguay
  country_code: UY
- name: Universidad de Chile
  domain: http://uchile.cl/
`)

	unis, err := ReadUniversities(path)
	require.NoError(t, err)
	require.Len(t, unis, 2)
	assert.Equal(t, "udelar.edu.uy", unis[0].Domain)
	assert.Equal(t, "UY", unis[0].CountryCode)
	assert.Equal(t, "uchile.cl", unis[1].Domain)
}

func TestReadUniversities_Errors(t *testing.T) {
	_, err := ReadUniversities(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = ReadUniversities(writeFile(t, "bad.json", `{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	_, err = ReadUniversities(writeFile(t, "bad.yml", "name: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}
