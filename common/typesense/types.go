package typesense

// Document is one knowledge snippet as stored in the collection.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Type    string `json:"type"`
}

// Hit is a search match with its text-match score.
type Hit struct {
	Document
	TextMatch int64
}
