// Package knowledge retrieves short mental-health reference snippets used to
// ground generated replies, and loads the corpus they come from.
package knowledge

import "context"

// DefaultResults is the number of snippets surfaced per turn.
const DefaultResults = 3

// Snippet is one piece of retrieved reference text. Metadata carries at least
// "source" and "type" when known.
type Snippet struct {
	Content  string
	Metadata map[string]string
}

// Source returns the snippet's source tag, or "" when unknown.
func (s Snippet) Source() string {
	return s.Metadata["source"]
}

// Retriever returns up to n snippets relevant to query. Implementations never
// fail: backend errors, empty stores and misses all yield an empty slice.
type Retriever interface {
	Retrieve(ctx context.Context, query string, n int) []Snippet
}

// Document is a corpus entry before indexing.
type Document struct {
	ID      string `yaml:"-"`
	Content string `yaml:"content"`
	Source  string `yaml:"source"`
	Type    string `yaml:"type"`
}

func (d Document) snippet() Snippet {
	return Snippet{
		Content:  d.Content,
		Metadata: map[string]string{"source": d.Source, "type": d.Type},
	}
}
