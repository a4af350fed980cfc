package enrich

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/uni-enrich/internal/model"
	"github.com/sells-group/uni-enrich/pkg/completion"
)

// fakeEnricher tags each university and records peak concurrency.
type fakeEnricher struct {
	delay    func() time.Duration
	panicOn  string
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *fakeEnricher) EnrichDetailed(_ context.Context, u model.University) (model.University, Stats) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.calls.Add(1)

	if f.delay != nil {
		time.Sleep(f.delay())
	}
	if u.Domain == f.panicOn {
		panic("enricher exploded")
	}

	out := u.Clone()
	pop := len(u.Name)
	out.StudentPopulation = &pop
	return out, Stats{Entities: 1, Found: 1, Unknown: 3}
}

func makeUnis(n int) []model.University {
	unis := make([]model.University, n)
	for i := range unis {
		unis[i] = model.University{
			Name:   fmt.Sprintf("University %d", i),
			Domain: fmt.Sprintf("u%d.edu", i),
		}
	}
	return unis
}

func TestEnrichAll_PreservesOrder(t *testing.T) {
	f := &fakeEnricher{delay: func() time.Duration {
		return time.Duration(rand.IntN(5)) * time.Millisecond
	}}
	unis := makeUnis(30)

	got := NewCoordinator(f).EnrichAll(context.Background(), unis, 8)

	require.Len(t, got, len(unis))
	for i := range unis {
		assert.Equal(t, unis[i].Domain, got[i].Domain)
		require.NotNil(t, got[i].StudentPopulation)
	}
}

func TestEnrichAll_RespectsLimit(t *testing.T) {
	for _, tt := range []struct {
		limit    int
		wantPeak int32
	}{
		{limit: 1, wantPeak: 1},
		{limit: 2, wantPeak: 2},
		{limit: 0, wantPeak: DefaultConcurrency},
		{limit: -4, wantPeak: DefaultConcurrency},
	} {
		t.Run(fmt.Sprintf("limit_%d", tt.limit), func(t *testing.T) {
			f := &fakeEnricher{delay: func() time.Duration { return 5 * time.Millisecond }}

			NewCoordinator(f).EnrichAll(context.Background(), makeUnis(12), tt.limit)

			assert.LessOrEqual(t, f.peak.Load(), tt.wantPeak)
			assert.Equal(t, int32(12), f.calls.Load())
		})
	}
}

func TestEnrichAll_PanicSubstitutesOriginal(t *testing.T) {
	logs := observeLogs(t)
	f := &fakeEnricher{panicOn: "u2.edu"}
	unis := makeUnis(5)

	got, stats := NewCoordinator(f).enrichAll(context.Background(), unis, 2)

	require.Len(t, got, 5)
	assert.Equal(t, unis[2], got[2])
	for _, i := range []int{0, 1, 3, 4} {
		assert.NotNil(t, got[i].StudentPopulation)
	}
	assert.Equal(t, 5, stats.Entities)
	assert.Equal(t, 4, stats.Failed)
	assert.Equal(t, 1, logs.FilterMessage("enrich: university failed").Len())
}

func TestEnrichAll_Empty(t *testing.T) {
	got := NewCoordinator(&fakeEnricher{}).EnrichAll(context.Background(), nil, 3)
	assert.Empty(t, got)
}

func TestEnrichAll_SeedUniversities(t *testing.T) {
	seeds := []model.University{
		{Name: "Universidad de Buenos Aires", Domain: "uba.ar"},
		{Name: "Universidad Nacional Autónoma de México", Domain: "unam.mx"},
		{Name: "Pontificia Universidad Católica de Chile", Domain: "puc.cl"},
	}
	c := NewCoordinator(newEnricher(&completion.StubBackend{}))

	got := c.EnrichAll(context.Background(), seeds, 3)

	require.Len(t, got, 3)
	for i, u := range got {
		assert.Equal(t, seeds[i].Domain, u.Domain)
		assert.True(t, u.Enriched())
	}
	assert.Equal(t, "https://www.linkedin.com/school/unam/", *got[1].LinkedInURL)
}
