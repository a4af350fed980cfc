package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/uni-enrich/internal/store"
)

const kaggleCSVFixture = `AR,Universidad de Buenos Aires,https://www.uba.ar/
MX,Universidad Nacional Autónoma de México,http://www.unam.mx/
US,Massachusetts Institute of Technology,https://www.mit.edu/
CL,Pontificia Universidad Católica de Chile,https://www.puc.cl
UY,Universidad de la República,https://udelar.edu.uy/
`

func resetKaggleFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		kaggleCSV, kaggleOutput, kaggleFilteredOutput, kaggleStore = "", "", "", ""
		kaggleCountries = nil
		kaggleLimit, kaggleBatchSize, kaggleConcurrency = 0, 0, 0
		kaggleDelay = 0
		kaggleDryRun, kaggleResume, kaggleOffline = false, false, false
	})
}

func writeKaggleCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "world-universities.csv")
	require.NoError(t, os.WriteFile(path, []byte(kaggleCSVFixture), 0o644))
	return path
}

func TestKaggle_DryRunSavesFilteredOnly(t *testing.T) {
	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = writeKaggleCSV(t, c.Output.Dir)
	kaggleDryRun = true

	kaggleCmd.SetContext(context.Background())
	require.NoError(t, kaggleCmd.RunE(kaggleCmd, nil))

	filtered, err := store.NewJSONFile(filepath.Join(c.Output.Dir, "filtered_universities.json")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, filtered, 4, "US row is outside the target countries")
	assert.Equal(t, "www.uba.ar", filtered[0].Domain)

	_, err = os.Stat(filepath.Join(c.Output.Dir, "enriched_universities_kaggle.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestKaggle_OfflineBatches(t *testing.T) {
	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = writeKaggleCSV(t, c.Output.Dir)
	kaggleOffline = true
	kaggleBatchSize = 3

	kaggleCmd.SetContext(context.Background())
	require.NoError(t, kaggleCmd.RunE(kaggleCmd, nil))

	unis, err := store.NewJSONFile(filepath.Join(c.Output.Dir, "enriched_universities_kaggle.json")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, unis, 4)
	for _, u := range unis {
		assert.True(t, u.Enriched(), u.Domain)
	}
	assert.Equal(t, "www.uba.ar", unis[0].Domain)
	assert.Equal(t, "udelar.edu.uy", unis[3].Domain)
}

func TestKaggle_CountrySelection(t *testing.T) {
	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = writeKaggleCSV(t, c.Output.Dir)
	kaggleCountries = []string{"México", "cl"}
	kaggleDryRun = true

	kaggleCmd.SetContext(context.Background())
	require.NoError(t, kaggleCmd.RunE(kaggleCmd, nil))

	filtered, err := store.NewJSONFile(filepath.Join(c.Output.Dir, "filtered_universities.json")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "MX", filtered[0].CountryCode)
	assert.Equal(t, "CL", filtered[1].CountryCode)
}

func TestKaggle_UnknownCountry(t *testing.T) {
	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = writeKaggleCSV(t, c.Output.Dir)
	kaggleCountries = []string{"Atlantis"}

	kaggleCmd.SetContext(context.Background())
	assert.Error(t, kaggleCmd.RunE(kaggleCmd, nil))
}

func TestKaggle_MissingCSV(t *testing.T) {
	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = filepath.Join(c.Output.Dir, "nope.csv")

	kaggleCmd.SetContext(context.Background())
	assert.Error(t, kaggleCmd.RunE(kaggleCmd, nil))
}

func TestKaggle_DistributionLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	c := testConfig(t)
	resetKaggleFlags(t)
	kaggleCSV = writeKaggleCSV(t, c.Output.Dir)
	kaggleDryRun = true

	kaggleCmd.SetContext(context.Background())
	require.NoError(t, kaggleCmd.RunE(kaggleCmd, nil))

	// four countries survive the filter, one line each
	assert.Equal(t, 4, logs.FilterMessage("ingest: universities by country").Len())
}
