package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountries_Resolve(t *testing.T) {
	c := DefaultCountries()

	tests := []struct {
		in       string
		wantCode string
		wantOK   bool
	}{
		{in: "AR", wantCode: "AR", wantOK: true},
		{in: "mx", wantCode: "MX", wantOK: true},
		{in: " CL ", wantCode: "CL", wantOK: true},
		{in: "México", wantCode: "MX", wantOK: true},
		{in: "mexico", wantCode: "MX", wantOK: true},
		{in: "Türkiye", wantCode: "TR", wantOK: true},
		{in: "turkiye", wantCode: "TR", wantOK: true},
		{in: "REPÚBLICA DOMINICANA", wantCode: "DO", wantOK: true},
		{in: "Kingdom  of Spain", wantCode: "ES", wantOK: true},
		{in: "US", wantOK: false},
		{in: "France", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.Resolve(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestDefaultCountries_Codes(t *testing.T) {
	assert.Equal(t, []string{
		"AR", "BO", "BR", "CL", "CO", "CR", "CU", "DO", "EC", "ES",
		"GT", "HN", "MX", "PA", "PE", "PY", "SV", "TR", "UY",
	}, DefaultCountries().Codes())
}

func TestCountries_Only(t *testing.T) {
	c, err := DefaultCountries().Only([]string{"ar", "Brasil"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AR", "BR"}, c.Codes())

	_, ok := c.Resolve("MX")
	assert.False(t, ok)

	_, err = DefaultCountries().Only([]string{"AR", "Narnia"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Narnia")
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "panama", foldName("Panamá"))
	assert.Equal(t, "peru", foldName("PERÚ"))
	assert.Equal(t, "espana", foldName("España"))
}
