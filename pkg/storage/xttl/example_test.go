package xttl_test

import (
	"fmt"
	"time"

	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

func Example() {
	cache, err := xttl.New[string]()
	if err != nil {
		panic(err)
	}

	cache.SetWithTTL("search_music", "3 results", xttl.TTLShort)
	cache.SetWithTTL("search_tech", "5 results", xttl.TTLShort)
	cache.Set("event_1", "Jazz Night")

	removed := cache.InvalidatePattern("search_")
	v, ok := cache.Get("event_1")
	fmt.Println(removed, v, ok, cache.Keys(""))
	// Output: 2 Jazz Night true [event_1]
}

func ExampleCache_Stats() {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := xttl.ClockFunc(func() time.Time { return now })

	cache, _ := xttl.New(xttl.WithClock[int](clock))
	cache.SetWithTTL("a", 1, time.Second)
	cache.SetWithTTL("b", 2, time.Hour)
	now = now.Add(2 * time.Second)

	s := cache.Stats()
	fmt.Println(s.TotalEntries, s.ValidEntries, s.ExpiredEntries, s.HitRate)
	// Output: 2 1 1 0.5
}
