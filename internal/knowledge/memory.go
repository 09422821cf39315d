package knowledge

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// MemoryRetriever ranks an in-memory corpus by query-term overlap. It serves
// when no vector store is configured.
type MemoryRetriever struct {
	docs  []Document
	terms []map[string]struct{}
}

func NewMemoryRetriever(docs []Document) *MemoryRetriever {
	r := &MemoryRetriever{
		docs:  docs,
		terms: make([]map[string]struct{}, len(docs)),
	}
	for i, d := range docs {
		r.terms[i] = termSet(d.Content)
	}
	return r
}

// NewSeedRetriever builds a MemoryRetriever over the embedded seed corpus.
func NewSeedRetriever() (*MemoryRetriever, error) {
	docs, err := SeedDocuments()
	if err != nil {
		return nil, err
	}
	return NewMemoryRetriever(docs), nil
}

func (r *MemoryRetriever) Retrieve(_ context.Context, query string, n int) []Snippet {
	if n <= 0 {
		n = DefaultResults
	}
	queryTerms := termSet(query)
	if len(queryTerms) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score int
	}
	var ranked []scored
	for i, docTerms := range r.terms {
		score := 0
		for t := range queryTerms {
			if _, ok := docTerms[t]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]Snippet, len(ranked))
	for i, s := range ranked {
		out[i] = r.docs[s.idx].snippet()
	}
	return out
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "you": {}, "your": {}, "are": {}, "how": {},
	"what": {}, "with": {}, "can": {}, "that": {}, "this": {}, "have": {}, "feel": {},
	"about": {}, "from": {}, "not": {}, "but": {}, "was": {}, "all": {},
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}
