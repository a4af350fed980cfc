package ingest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Country is a target country with the spellings it appears under.
type Country struct {
	Code       string
	Name       string
	Variations []string
}

// TargetCountries is the default set of countries kept from the dataset.
var TargetCountries = []Country{
	{Code: "AR", Name: "Argentina", Variations: []string{"Argentina", "Argentine Republic"}},
	{Code: "BO", Name: "Bolivia", Variations: []string{"Bolivia", "Plurinational State of Bolivia"}},
	{Code: "BR", Name: "Brazil", Variations: []string{"Brazil", "Brasil", "Federative Republic of Brazil"}},
	{Code: "CL", Name: "Chile", Variations: []string{"Chile", "Republic of Chile"}},
	{Code: "CO", Name: "Colombia", Variations: []string{"Colombia", "Republic of Colombia"}},
	{Code: "CR", Name: "Costa Rica", Variations: []string{"Costa Rica", "Republic of Costa Rica"}},
	{Code: "CU", Name: "Cuba", Variations: []string{"Cuba", "Republic of Cuba"}},
	{Code: "DO", Name: "Dominican Republic", Variations: []string{"Dominican Republic", "República Dominicana"}},
	{Code: "EC", Name: "Ecuador", Variations: []string{"Ecuador", "Republic of Ecuador"}},
	{Code: "SV", Name: "El Salvador", Variations: []string{"El Salvador", "Republic of El Salvador"}},
	{Code: "GT", Name: "Guatemala", Variations: []string{"Guatemala", "Republic of Guatemala"}},
	{Code: "HN", Name: "Honduras", Variations: []string{"Honduras", "Republic of Honduras"}},
	{Code: "MX", Name: "Mexico", Variations: []string{"Mexico", "México", "United Mexican States"}},
	{Code: "PA", Name: "Panama", Variations: []string{"Panama", "Republic of Panama", "Panamá"}},
	{Code: "PY", Name: "Paraguay", Variations: []string{"Paraguay", "Republic of Paraguay"}},
	{Code: "PE", Name: "Peru", Variations: []string{"Peru", "Perú", "Republic of Peru"}},
	{Code: "UY", Name: "Uruguay", Variations: []string{"Uruguay", "Oriental Republic of Uruguay"}},
	{Code: "ES", Name: "Spain", Variations: []string{"Spain", "España", "Kingdom of Spain"}},
	{Code: "TR", Name: "Turkey", Variations: []string{"Turkey", "Türkiye", "Republic of Turkey", "Turkiye"}},
}

// Countries resolves country codes and names against a target set.
type Countries struct {
	byCode map[string]Country
	byName map[string]string
}

// NewCountries indexes the given countries by code and by folded name.
func NewCountries(list []Country) *Countries {
	c := &Countries{
		byCode: make(map[string]Country, len(list)),
		byName: make(map[string]string),
	}
	for _, country := range list {
		c.byCode[country.Code] = country
		c.byName[foldName(country.Name)] = country.Code
		for _, v := range country.Variations {
			c.byName[foldName(v)] = country.Code
		}
	}
	return c
}

// DefaultCountries returns the index over TargetCountries.
func DefaultCountries() *Countries {
	return NewCountries(TargetCountries)
}

// Resolve maps an ISO code or a known spelling of a country name to its
// Country. Matching ignores case and diacritics.
func (c *Countries) Resolve(s string) (Country, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Country{}, false
	}
	if country, ok := c.byCode[strings.ToUpper(s)]; ok {
		return country, true
	}
	if code, ok := c.byName[foldName(s)]; ok {
		return c.byCode[code], true
	}
	return Country{}, false
}

// Only returns a new index restricted to the given codes or names.
func (c *Countries) Only(selectors []string) (*Countries, error) {
	var list []Country
	var unknown []string
	for _, sel := range selectors {
		country, ok := c.Resolve(sel)
		if !ok {
			unknown = append(unknown, sel)
			continue
		}
		list = append(list, country)
	}
	if len(unknown) > 0 {
		return nil, eris.Errorf("ingest: unknown countries: %s", strings.Join(unknown, ", "))
	}
	return NewCountries(list), nil
}

// Codes returns the sorted ISO codes in the index.
func (c *Countries) Codes() []string {
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// foldName lowercases s and strips diacritics so "México" matches "mexico".
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
