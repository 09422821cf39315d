package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pubMedQADataset = "qiaojin/PubMedQA"
	pubMedQAConfig  = "pqa_labeled"
	pubMedQARows    = 100
)

// HuggingFaceLoader reads PubMedQA question/answer pairs from the Hugging Face
// datasets server.
type HuggingFaceLoader struct {
	httpClient *http.Client
	baseURL    string
	rows       int
}

func NewHuggingFaceLoader(httpClient *http.Client, baseURL string) *HuggingFaceLoader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HuggingFaceLoader{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		rows:       pubMedQARows,
	}
}

func (l *HuggingFaceLoader) Name() string {
	return "huggingface"
}

type rowsResponse struct {
	Rows []struct {
		Row struct {
			Question   string `json:"question"`
			LongAnswer string `json:"long_answer"`
		} `json:"row"`
	} `json:"rows"`
}

func (l *HuggingFaceLoader) Load(ctx context.Context) ([]Document, error) {
	q := url.Values{}
	q.Set("dataset", pubMedQADataset)
	q.Set("config", pubMedQAConfig)
	q.Set("split", "train")
	q.Set("offset", "0")
	q.Set("length", strconv.Itoa(l.rows))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/rows?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rows: unexpected status %d", resp.StatusCode)
	}

	var body rowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	docs := make([]Document, 0, len(body.Rows))
	for _, r := range body.Rows {
		if r.Row.Question == "" && r.Row.LongAnswer == "" {
			continue
		}
		docs = append(docs, Document{
			Content: fmt.Sprintf("Question: %s Answer: %s", r.Row.Question, r.Row.LongAnswer),
			Source:  "pubmed_qa",
			Type:    "medical_qa",
		})
	}
	return docs, nil
}
