package model

import "strings"

// UniversityType is the ownership/funding model of a university.
type UniversityType string

const (
	UniversityTypePublic  UniversityType = "public"
	UniversityTypePrivate UniversityType = "private"
)

// Valid reports whether t is one of the known university types.
func (t UniversityType) Valid() bool {
	return t == UniversityTypePublic || t == UniversityTypePrivate
}

// University is a single record being enriched. Domain is the effective key.
//
// The four enrichment fields are nil when unknown. A non-nil value has always
// passed schema validation.
type University struct {
	Domain      string `json:"domain"`
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`

	LinkedInURL       *string         `json:"linkedin_url,omitempty"`
	StudentPopulation *int            `json:"student_population,omitempty"`
	Type              *UniversityType `json:"university_type,omitempty"`
	LanguageCentre    *bool           `json:"language_centre,omitempty"`

	// TechStack is filled by the techstack command, never by enrichment.
	TechStack []string `json:"tech_stack,omitempty"`
}

// Subject returns the identity fields the lookups need.
func (u University) Subject() Subject {
	return Subject{Name: u.Name, Domain: u.Domain}
}

// Key returns the normalized domain used for de-duplication and resume.
func (u University) Key() string {
	return strings.ToLower(strings.TrimSpace(u.Domain))
}

// Enriched reports whether every enrichment field is populated.
func (u University) Enriched() bool {
	return u.LinkedInURL != nil && u.StudentPopulation != nil && u.Type != nil && u.LanguageCentre != nil
}

// Clone returns a deep copy so callers can merge without aliasing the input.
func (u University) Clone() University {
	out := u
	if u.LinkedInURL != nil {
		v := *u.LinkedInURL
		out.LinkedInURL = &v
	}
	if u.StudentPopulation != nil {
		v := *u.StudentPopulation
		out.StudentPopulation = &v
	}
	if u.Type != nil {
		v := *u.Type
		out.Type = &v
	}
	if u.LanguageCentre != nil {
		v := *u.LanguageCentre
		out.LanguageCentre = &v
	}
	if u.TechStack != nil {
		out.TechStack = append([]string(nil), u.TechStack...)
	}
	return out
}

// Subject is the part of a University a lookup prompt is rendered from.
type Subject struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}
