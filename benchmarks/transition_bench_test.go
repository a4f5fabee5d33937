// Package benchmarks provides performance benchmarks for the transition engine.
package benchmarks

import (
	"context"
	"testing"

	"github.com/comalice/statematch"
)

func BenchmarkApplyTransition(b *testing.B) {
	for _, n := range []int{2, 16, 256} {
		b.Run(fmtSize(n), func(b *testing.B) {
			app := NewRingApp(n)
			w := app.World()
			ctx := context.Background()
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				statematch.SetNextWith(w, Advance)
				statematch.ApplyStateTransition[Ring](ctx, w)
			}
		})
	}
}

func BenchmarkSuppressedTransition(b *testing.B) {
	app := NewRingApp(2)
	w := app.World()
	ctx := context.Background()
	cur, _ := statematch.Current[Ring](w)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		statematch.SetNext(w, cur)
		statematch.ApplyStateTransition[Ring](ctx, w)
	}
}

func BenchmarkUpdateNoPending(b *testing.B) {
	app := NewRingApp(16)
	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		app.Update(ctx)
	}
}

func BenchmarkMatchers(b *testing.B) {
	main, secondary := Ring{Pos: 1, Size: 4}, Ring{Pos: 0, Size: 4}
	matchers := map[string]statematch.Matcher[Ring]{
		"Eq":   statematch.Eq(main),
		"Func": statematch.Func(func(r Ring) bool { return r.Pos > 0 }),
		"AnyOf": statematch.AnyOf(
			statematch.Eq(Ring{Pos: 3, Size: 4}),
			statematch.Func(func(r Ring) bool { return r.Pos%2 == 1 }),
		),
		"EdgeFunc": statematch.EdgeFunc(func(m, s Ring) bool { return m.Pos == s.Pos+1 }),
	}
	for name, m := range matchers {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = m.MatchStateTransition(&main, &secondary)
			}
		})
	}
}

func BenchmarkInStateCondition(b *testing.B) {
	app := NewRingApp(4)
	w := app.World()
	cond := statematch.InState(statematch.Eq(Ring{Pos: 0, Size: 4}))
	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = cond(ctx, w)
	}
}
