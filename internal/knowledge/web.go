package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxScrapedChars = 2000

// WebSource is a page scraped for reference content.
type WebSource struct {
	Name string
	URL  string
}

// DefaultWebSources are public mental-health overview pages.
var DefaultWebSources = []WebSource{
	{Name: "WHO_mental_health", URL: "https://www.who.int/health-topics/mental-health"},
	{Name: "NAMI_resources", URL: "https://www.nami.org/About-Mental-Illness/Mental-Health-Conditions"},
	{Name: "CDC_mental_health", URL: "https://www.cdc.gov/mentalhealth/learn/index.htm"},
}

// WebLoader scrapes the main content of each source page. Pages are fetched
// one at a time with a pause between them.
type WebLoader struct {
	httpClient *http.Client
	sources    []WebSource
	delay      time.Duration
}

func NewWebLoader(httpClient *http.Client, sources []WebSource, delay time.Duration) *WebLoader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebLoader{httpClient: httpClient, sources: sources, delay: delay}
}

func (l *WebLoader) Name() string {
	return "web"
}

// Load returns one document per page that yielded content. Failing pages are
// logged and skipped.
func (l *WebLoader) Load(ctx context.Context) ([]Document, error) {
	var docs []Document
	for i, src := range l.sources {
		if i > 0 && l.delay > 0 {
			select {
			case <-ctx.Done():
				return docs, ctx.Err()
			case <-time.After(l.delay):
			}
		}

		text, err := l.scrape(ctx, src.URL)
		if err != nil {
			slog.WarnContext(ctx, "failed to scrape page", "source", src.Name, "url", src.URL, "error", err)
			continue
		}
		if text == "" {
			slog.DebugContext(ctx, "no main content found", "source", src.Name)
			continue
		}
		docs = append(docs, Document{
			Content: text,
			Source:  src.Name,
			Type:    "web_scraped",
		})
	}
	return docs, nil
}

func (l *WebLoader) scrape(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "mindsukoon-companion/1.0")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	if content.Length() == 0 {
		return "", nil
	}
	content.Find("script, style, noscript").Remove()

	return truncateRunes(strings.Join(strings.Fields(content.Text()), " "), maxScrapedChars), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
