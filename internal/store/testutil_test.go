package store

import "github.com/sells-group/uni-enrich/internal/model"

func ptr[T any](v T) *T { return &v }

func sampleUniversities() []model.University {
	public := model.UniversityTypePublic
	return []model.University{
		{
			Domain:            "uba.ar",
			Name:              "Universidad de Buenos Aires",
			Country:           "Argentina",
			CountryCode:       "AR",
			LinkedInURL:       ptr("https://www.linkedin.com/school/uba/"),
			StudentPopulation: ptr(150000),
			Type:              &public,
			LanguageCentre:    ptr(true),
			TechStack:         []string{"WordPress", "Cloudflare"},
		},
		{
			Domain: "unam.mx",
			Name:   "Universidad Nacional Autónoma de México",
		},
	}
}
