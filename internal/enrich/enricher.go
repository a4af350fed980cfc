// Package enrich runs the four lookups for a university and drives them over
// a list of universities with bounded concurrency and chunked persistence.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/uni-enrich/internal/lookup"
	"github.com/sells-group/uni-enrich/internal/model"
)

// Stats counts lookup results.
type Stats struct {
	Entities int `json:"entities"`
	Found    int `json:"found"`
	Unknown  int `json:"unknown"`
	Failed   int `json:"failed"`
}

func (s *Stats) record(status model.LookupStatus) {
	switch status {
	case model.LookupFound:
		s.Found++
	case model.LookupUnknown:
		s.Unknown++
	default:
		s.Failed++
	}
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Entities: s.Entities + o.Entities,
		Found:    s.Found + o.Found,
		Unknown:  s.Unknown + o.Unknown,
		Failed:   s.Failed + o.Failed,
	}
}

// Enricher fills the enrichment fields of a single university.
type Enricher struct {
	tasks *lookup.Tasks
}

// NewEnricher creates an Enricher over the given lookups.
func NewEnricher(tasks *lookup.Tasks) *Enricher {
	return &Enricher{tasks: tasks}
}

// Enrich runs all four lookups and returns a copy of u with every non-nil
// answer merged in. It never fails: lookups that fail leave their field as it
// was on u.
func (e *Enricher) Enrich(ctx context.Context, u model.University) model.University {
	out, _ := e.EnrichDetailed(ctx, u)
	return out
}

// EnrichDetailed is Enrich plus per-lookup counts.
func (e *Enricher) EnrichDetailed(ctx context.Context, u model.University) (model.University, Stats) {
	var (
		g        errgroup.Group
		linkedIn model.Outcome[string]
		pop      model.Outcome[int]
		typ      model.Outcome[model.UniversityType]
		lc       model.Outcome[bool]
	)

	// Lookups are independent; one failing does not cancel the others.
	g.Go(func() error {
		linkedIn = guard(ctx, e.tasks.LinkedIn, lookup.NameLinkedIn, u)
		return nil
	})
	g.Go(func() error {
		pop = guard(ctx, e.tasks.StudentPopulation, lookup.NameStudentPopulation, u)
		return nil
	})
	g.Go(func() error {
		typ = guard(ctx, e.tasks.UniversityType, lookup.NameUniversityType, u)
		return nil
	})
	g.Go(func() error {
		lc = guard(ctx, e.tasks.LanguageCentre, lookup.NameLanguageCentre, u)
		return nil
	})
	_ = g.Wait()

	out := u.Clone()
	if v := linkedIn.ValueOrNil(); v != nil {
		out.LinkedInURL = v
	}
	if v := pop.ValueOrNil(); v != nil {
		out.StudentPopulation = v
	}
	if v := typ.ValueOrNil(); v != nil {
		out.Type = v
	}
	if v := lc.ValueOrNil(); v != nil {
		out.LanguageCentre = v
	}

	stats := Stats{Entities: 1}
	stats.record(linkedIn.Status())
	stats.record(pop.Status())
	stats.record(typ.Status())
	stats.record(lc.Status())

	return out, stats
}

// guard runs one lookup, converting a panic into a failed Outcome and logging
// any failure.
func guard[T any](ctx context.Context, task *lookup.Task[T], name string, u model.University) (out model.Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = model.Failed[T](model.ErrorKindInternal, fmt.Sprintf("panic: %v", r))
		}
		if !out.OK {
			zap.L().Warn("enrich: lookup failed",
				zap.String("university", u.Name),
				zap.String("domain", u.Domain),
				zap.String("lookup", name),
				zap.String("kind", string(out.Kind)),
				zap.String("reason", out.Err),
			)
		}
	}()
	return task.Run(ctx, u.Subject())
}
