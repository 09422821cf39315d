package search_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/internal/search"
)

type fakeSearcher struct {
	calls   int
	results []search.Result
}

func (f *fakeSearcher) Search(context.Context, string, int) []search.Result {
	f.calls++
	return f.results
}

type fakeCache struct {
	data   map[string][]byte
	getErr error
	setErr error
	ttl    time.Duration
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return nil, search.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttl = ttl
	return nil
}

var _ = Describe("CachedSearcher", func() {
	var (
		next  *fakeSearcher
		cache *fakeCache
		s     *search.CachedSearcher
	)

	BeforeEach(func() {
		next = &fakeSearcher{results: []search.Result{{Content: "c", Source: "https://example.org"}}}
		cache = &fakeCache{data: map[string][]byte{}}
		s = search.NewCachedSearcher(next, cache, time.Hour)
	})

	It("serves repeated queries from the cache", func() {
		first := s.Search(context.Background(), "Sleep tips", 3)
		second := s.Search(context.Background(), "  sleep   TIPS ", 3)

		Expect(next.calls).To(Equal(1))
		Expect(second).To(Equal(first))
		Expect(cache.ttl).To(Equal(time.Hour))
	})

	It("keys on the result count", func() {
		s.Search(context.Background(), "sleep", 3)
		s.Search(context.Background(), "sleep", 5)
		Expect(next.calls).To(Equal(2))
	})

	It("does not cache empty results", func() {
		next.results = nil
		s.Search(context.Background(), "sleep", 3)
		s.Search(context.Background(), "sleep", 3)
		Expect(next.calls).To(Equal(2))
		Expect(cache.data).To(BeEmpty())
	})

	It("bypasses a failing cache", func() {
		cache.getErr = errors.New("redis down")
		cache.setErr = errors.New("redis down")

		Expect(s.Search(context.Background(), "sleep", 3)).To(HaveLen(1))
		Expect(s.Search(context.Background(), "sleep", 3)).To(HaveLen(1))
		Expect(next.calls).To(Equal(2))
	})
})
