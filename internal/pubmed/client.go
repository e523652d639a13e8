// Package pubmed queries the NCBI E-utilities for literature supporting a
// gene/therapy pair. It chains esearch and esummary, drops citations without
// a PMID, and runs behind the same cache-plus-breaker discipline as the trial
// registry client.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"

	"github.com/faithogundimu/core/internal/config"
	"github.com/faithogundimu/core/pkg/models"
)

const cacheSize = 128

// Query identifies one literature search.
type Query struct {
	Gene    string
	Variant string
	Therapy string
}

func (q Query) key() string {
	return strings.ToUpper(q.Gene) + "|" + strings.ToUpper(q.Variant) + "|" + strings.ToLower(q.Therapy)
}

// term builds the esearch term for the pair.
func (q Query) term() string {
	parts := []string{q.Gene}
	if q.Variant != "" {
		parts = append(parts, q.Variant)
	}
	if q.Therapy != "" {
		parts = append(parts, q.Therapy)
	}
	return strings.Join(parts, " AND ")
}

// Client is an NCBI E-utilities client.
type Client struct {
	baseURL    string
	email      string
	maxResults int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      *lru.Cache[string, []models.Citation]
	logf       func(format string, args ...any)
}

// NewClient builds a client from config.
func NewClient(cfg config.PubMedConfig, logf func(format string, args ...any)) (*Client, error) {
	cache, err := lru.New[string, []models.Citation](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create pubmed cache: %w", err)
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "pubmed",
			MaxRequests: 2,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		cache: cache,
		logf:  logf,
	}, nil
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esummaryResponse holds the uid-keyed result map; the "uids" entry is not a
// document and is skipped during decoding.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Search returns citations supporting the pair. Citations lacking a PMID are
// dropped; an empty slice is a valid result.
func (c *Client) Search(ctx context.Context, q Query) ([]models.Citation, error) {
	if cached, ok := c.cache.Get(q.key()); ok {
		c.logf("pubmed: cache hit for %s %s", q.Gene, q.Therapy)
		return cached, nil
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("literature search %s %s: %w", q.Gene, q.Therapy, err)
	}

	citations := raw.([]models.Citation)
	c.cache.Add(q.key(), citations)
	return citations, nil
}

func (c *Client) fetch(ctx context.Context, q Query) ([]models.Citation, error) {
	ids, err := c.esearch(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Citation{}, nil
	}

	citations, err := c.esummary(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range citations {
		citations[i].Gene = strings.ToUpper(q.Gene)
		citations[i].Therapy = q.Therapy
	}

	c.logf("pubmed: %d citations for %s %s", len(citations), q.Gene, q.Therapy)
	return citations, nil
}

func (c *Client) esearch(ctx context.Context, q Query) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", q.term())
	params.Set("retmode", "json")
	params.Set("retmax", fmt.Sprintf("%d", c.maxResults))
	params.Set("sort", "relevance")
	if c.email != "" {
		params.Set("email", c.email)
	}

	var body esearchResponse
	if err := c.get(ctx, "esearch.fcgi", params, &body); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	return body.ESearchResult.IDList, nil
}

func (c *Client) esummary(ctx context.Context, ids []string) ([]models.Citation, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")
	if c.email != "" {
		params.Set("email", c.email)
	}

	var body esummaryResponse
	if err := c.get(ctx, "esummary.fcgi", params, &body); err != nil {
		return nil, fmt.Errorf("esummary: %w", err)
	}

	var citations []models.Citation
	for _, id := range ids {
		raw, ok := body.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.UID == "" {
			continue
		}

		var authors []string
		for _, a := range doc.Authors {
			authors = append(authors, a.Name)
		}

		citations = append(citations, models.Citation{
			PMID:    doc.UID,
			Title:   doc.Title,
			Journal: doc.Source,
			Year:    pubYear(doc.PubDate),
			Authors: strings.Join(authors, ", "),
		})
	}
	return citations, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call e-utilities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("e-utilities returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// pubYear extracts the year from a pubdate like "2024 Mar 15".
func pubYear(pubdate string) string {
	fields := strings.Fields(pubdate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
