package lookup

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/uni-enrich/internal/model"
)

// Lookup names as they appear in logs.
const (
	NameLinkedIn          = "linkedin"
	NameStudentPopulation = "student_population"
	NameUniversityType    = "university_type"
	NameLanguageCentre    = "language_centre"
)

const linkedInPrompt = `Find the LinkedIn URL for the university. Based on your knowledge:
1. Determine if the university has an official LinkedIn profile
2. The URL should be in the format "https://www.linkedin.com/school/..."
3. Return the result as a JSON string with format: {"url": "linkedin_url_here"}
4. If you're not confident about the LinkedIn URL or can't find it, return {"url": null}

For reference:
- Official university LinkedIn profiles are usually verified
- They typically have thousands of followers
- The URL usually contains the university name in English or local language

University: {university.name}
Domain: {university.domain}`

const studentPopulationPrompt = `Find the total student population for the university. Based on your knowledge:
1. Determine the total number of enrolled students (undergraduate + graduate)
2. Use the most recent available data
3. Return the result as a JSON string with format: {"population": number}
4. If you're not confident about the number or can't find it, return {"population": null}

For reference:
- Large public universities in Latin America often have 50,000+ students
- Private universities typically have 10,000-30,000 students
- Include both undergraduate and graduate students
- Round to the nearest thousand if exact number is not known

University: {university.name}
Domain: {university.domain}`

const universityTypePrompt = `Determine if the university is public or private. Based on your knowledge:
1. Determine the university's ownership/funding model
2. Public universities are primarily funded by government and have public oversight
3. Private universities are funded by private sources (tuition, endowments, etc.)
4. Return the result as a JSON string with format: {"type": "public"} or {"type": "private"}
5. If you're not confident about the type, return {"type": null}

For reference:
- Public universities in Latin America often have "Nacional" in their name
- Public universities typically have lower tuition fees
- Public universities are usually larger in student population
- Private universities often have religious affiliations (e.g., "Católica", "Pontificia")

University: {university.name}
Domain: {university.domain}`

const languageCentrePrompt = `Determine if the university has a language center/centre. Based on your knowledge:
1. Check if the university has a dedicated language learning facility
2. This could be called:
   - Language Center/Centre
   - Language School
   - Language Institute
   - Centro de Idiomas
   - Instituto de Lenguas
   - Escuela de Idiomas
3. Return the result as a JSON string with format: {"hasLanguageCentre": true/false}
4. If you're not confident about the existence of a language centre, return {"hasLanguageCentre": null}

For reference:
- Most large universities in Latin America have language centers
- They often offer courses in English and other foreign languages
- They may also offer Spanish/Portuguese courses for international students
- The center might be part of a larger faculty (e.g., Faculty of Languages)

University: {university.name}
Domain: {university.domain}`

// LinkedIn looks up the official LinkedIn school page.
var LinkedIn = mustCompile(&Descriptor[string]{
	Name:   NameLinkedIn,
	Field:  "url",
	Prompt: linkedInPrompt,
	Schema: nullableSchema("url", `{"type": ["string", "null"]}`),
	Transform: func(v any) (*string, error) {
		s := strings.TrimSpace(v.(string))
		if s == "" {
			return nil, nil
		}
		return &s, nil
	},
})

// StudentPopulation looks up total enrolment. Fractional answers are rounded.
var StudentPopulation = mustCompile(&Descriptor[int]{
	Name:   NameStudentPopulation,
	Field:  "population",
	Prompt: studentPopulationPrompt,
	Schema: nullableSchema("population", `{"type": ["number", "null"], "minimum": 0}`),
	Transform: func(v any) (*int, error) {
		f := v.(float64)
		if f > math.MaxInt32 {
			return nil, eris.Errorf("population %v out of range", f)
		}
		n := int(math.Round(f))
		return &n, nil
	},
})

// UniversityType looks up whether the university is public or private.
var UniversityType = mustCompile(&Descriptor[model.UniversityType]{
	Name:   NameUniversityType,
	Field:  "type",
	Prompt: universityTypePrompt,
	Schema: nullableSchema("type", `{"type": ["string", "null"], "enum": ["public", "private", null]}`),
	Transform: func(v any) (*model.UniversityType, error) {
		t := model.UniversityType(v.(string))
		if !t.Valid() {
			return nil, eris.Errorf("unknown university type %q", t)
		}
		return &t, nil
	},
})

// LanguageCentre looks up whether the university runs a language centre.
var LanguageCentre = mustCompile(&Descriptor[bool]{
	Name:   NameLanguageCentre,
	Field:  "hasLanguageCentre",
	Prompt: languageCentrePrompt,
	Schema: nullableSchema("hasLanguageCentre", `{"type": ["boolean", "null"]}`),
	Transform: func(v any) (*bool, error) {
		b := v.(bool)
		return &b, nil
	},
})

// Task binds a Descriptor to an Executor.
type Task[T any] struct {
	exec *Executor
	desc *Descriptor[T]
}

// NewTask creates a Task.
func NewTask[T any](exec *Executor, desc *Descriptor[T]) *Task[T] {
	return &Task[T]{exec: exec, desc: desc}
}

// Name returns the lookup name.
func (t *Task[T]) Name() string { return t.desc.Name }

// Run executes the lookup and returns the full Outcome.
func (t *Task[T]) Run(ctx context.Context, s model.Subject) model.Outcome[T] {
	return Execute(ctx, t.exec, t.desc, s)
}

// Find executes the lookup and returns its value, or nil when the lookup
// failed or the model did not know. The two cases are not distinguished.
func (t *Task[T]) Find(ctx context.Context, s model.Subject) *T {
	return t.Run(ctx, s).ValueOrNil()
}

// Tasks is the fixed set of four lookups run for every university.
type Tasks struct {
	LinkedIn          *Task[string]
	StudentPopulation *Task[int]
	UniversityType    *Task[model.UniversityType]
	LanguageCentre    *Task[bool]
}

// NewTasks builds the four standard lookups over one Executor.
func NewTasks(exec *Executor) *Tasks {
	return &Tasks{
		LinkedIn:          NewTask(exec, LinkedIn),
		StudentPopulation: NewTask(exec, StudentPopulation),
		UniversityType:    NewTask(exec, UniversityType),
		LanguageCentre:    NewTask(exec, LanguageCentre),
	}
}
