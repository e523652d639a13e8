// Package trials queries the ClinicalTrials.gov v2 API for recruiting studies
// matching a gene and cancer type. Responses are cached per query and calls
// run behind a circuit breaker so a degraded registry cannot stall a whole
// roster run.
package trials

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

// Query identifies one trial search.
type Query struct {
	Gene       string
	Variant    string
	CancerType string
}

func (q Query) key() string {
	return strings.ToUpper(q.Gene) + "|" + strings.ToUpper(q.Variant) + "|" + strings.ToLower(q.CancerType)
}

// Client is a ClinicalTrials.gov v2 API client.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      *lru.Cache[string, []models.TrialMatch]
	logf       func(format string, args ...any)
}

// NewClient builds a client from config.
func NewClient(cfg config.TrialsConfig, logf func(format string, args ...any)) (*Client, error) {
	cache, err := lru.New[string, []models.TrialMatch](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create trials cache: %w", err)
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "clinicaltrials",
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

// studiesResponse mirrors the fields we use from the v2 studies endpoint.
type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus string `json:"overallStatus"`
				StartDateStruct struct {
					Date string `json:"date"`
				} `json:"startDateStruct"`
			} `json:"statusModule"`
			DescriptionModule struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
			ConditionsModule struct {
				Conditions []string `json:"conditions"`
			} `json:"conditionsModule"`
			DesignModule struct {
				Phases []string `json:"phases"`
			} `json:"designModule"`
			ArmsInterventionsModule struct {
				Interventions []struct {
					Name string `json:"name"`
				} `json:"interventions"`
			} `json:"armsInterventionsModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// Search returns recruiting trials matching the query, newest API order
// preserved. An empty slice is a valid result.
func (c *Client) Search(ctx context.Context, q Query) ([]models.TrialMatch, error) {
	if cached, ok := c.cache.Get(q.key()); ok {
		c.logf("trials: cache hit for %s %s", q.Gene, q.Variant)
		return cached, nil
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("trial search %s %s: %w", q.Gene, q.Variant, err)
	}

	matches := raw.([]models.TrialMatch)
	c.cache.Add(q.key(), matches)
	return matches, nil
}

func (c *Client) fetch(ctx context.Context, q Query) ([]models.TrialMatch, error) {
	params := url.Values{}
	params.Set("query.term", fmt.Sprintf("%s AND %s", q.Gene, q.CancerType))
	params.Set("filter.overallStatus", "RECRUITING")
	params.Set("pageSize", fmt.Sprintf("%d", c.maxResults*4))

	endpoint := fmt.Sprintf("%s/studies?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var body studiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}

	var matches []models.TrialMatch
	for _, study := range body.Studies {
		p := study.ProtocolSection
		if !strings.EqualFold(p.StatusModule.OverallStatus, "RECRUITING") {
			continue
		}

		var interventions []string
		for _, iv := range p.ArmsInterventionsModule.Interventions {
			interventions = append(interventions, iv.Name)
		}

		matches = append(matches, models.TrialMatch{
			NCTID:         p.IdentificationModule.NCTID,
			Title:         p.IdentificationModule.BriefTitle,
			Phase:         strings.Join(p.DesignModule.Phases, "/"),
			Status:        p.StatusModule.OverallStatus,
			Summary:       p.DescriptionModule.BriefSummary,
			Conditions:    p.ConditionsModule.Conditions,
			Interventions: interventions,
			TargetGene:    strings.ToUpper(q.Gene),
			StartDate:     parseStartDate(p.StatusModule.StartDateStruct.Date),
			URL:           "https://clinicaltrials.gov/study/" + p.IdentificationModule.NCTID,
		})
	}

	c.logf("trials: %d recruiting studies for %s %s", len(matches), q.Gene, q.Variant)
	return matches, nil
}

// parseStartDate handles the registry's full and month-only date forms.
func parseStartDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
