package cache

import (
	"context"
	"fmt"
	"testing"
)

// BenchmarkBuildKey measures canonical key construction for a typical filter set.
func BenchmarkBuildKey(b *testing.B) {
	params := map[string]any{"department": "CSE", "semester": 3, "shift": "Day"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildKey("getRoutines", params)
	}
}

// BenchmarkStore_Get_Hit measures store hit performance.
func BenchmarkStore_Get_Hit(b *testing.B) {
	s := NewStore[string]()
	s.Set("key", "value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Get("key")
	}
}

// BenchmarkStore_Invalidate measures substring invalidation over many keys.
func BenchmarkStore_Invalidate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s := NewStore[int]()
		for j := 0; j < 1000; j++ {
			s.Set(fmt.Sprintf(`getRoutines:{"department":"D%d"}`, j), j)
		}
		b.StartTimer()
		s.Invalidate("D5")
	}
}

// BenchmarkLoader_Hit measures a read-through hit.
func BenchmarkLoader_Hit(b *testing.B) {
	l := NewLoader(NewStore[string]())
	ctx := context.Background()
	fetch := func(context.Context) (string, error) { return "v", nil }
	_, _ = l.Load(ctx, "k", nil, fetch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = l.Load(ctx, "k", nil, fetch)
	}
}
