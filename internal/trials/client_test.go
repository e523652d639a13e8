package trials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/faithogundimu/core/internal/config"
)

const studiesFixture = `{
	"studies": [
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT05123456", "briefTitle": "Alpelisib Plus Fulvestrant in PIK3CA-Mutated Breast Cancer"},
				"statusModule": {"overallStatus": "RECRUITING", "startDateStruct": {"date": "2025-06"}},
				"descriptionModule": {"briefSummary": "Phase 3 study of alpelisib."},
				"conditionsModule": {"conditions": ["Breast Cancer"]},
				"designModule": {"phases": ["PHASE3"]},
				"armsInterventionsModule": {"interventions": [{"name": "Alpelisib"}, {"name": "Fulvestrant"}]}
			}
		},
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT05999999", "briefTitle": "Completed Study"},
				"statusModule": {"overallStatus": "COMPLETED", "startDateStruct": {"date": "2020-01-15"}},
				"designModule": {"phases": ["PHASE2"]}
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.TrialsConfig{
		BaseURL:    server.URL,
		MaxResults: 5,
		Timeout:    5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, server
}

func TestSearch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter.overallStatus"); got != "RECRUITING" {
			t.Errorf("overallStatus filter = %q, want RECRUITING", got)
		}
		w.Write([]byte(studiesFixture))
	})

	matches, err := client.Search(context.Background(), Query{Gene: "PIK3CA", Variant: "H1047R", CancerType: "breast cancer"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (non-recruiting filtered)", len(matches))
	}

	m := matches[0]
	if m.NCTID != "NCT05123456" {
		t.Errorf("NCTID = %q, want NCT05123456", m.NCTID)
	}
	if m.Phase != "PHASE3" {
		t.Errorf("Phase = %q, want PHASE3", m.Phase)
	}
	if m.TargetGene != "PIK3CA" {
		t.Errorf("TargetGene = %q, want PIK3CA", m.TargetGene)
	}
	if m.StartDate.IsZero() {
		t.Error("StartDate not parsed from month-only form")
	}
	if len(m.Interventions) != 2 {
		t.Errorf("Interventions = %v, want alpelisib and fulvestrant", m.Interventions)
	}
	if m.URL != "https://clinicaltrials.gov/study/NCT05123456" {
		t.Errorf("URL = %q, want study link", m.URL)
	}
}

func TestSearch_CachesQueries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(studiesFixture))
	})

	q := Query{Gene: "PIK3CA", Variant: "H1047R", CancerType: "breast cancer"}
	for i := 0; i < 3; i++ {
		if _, err := client.Search(context.Background(), q); err != nil {
			t.Fatalf("Search() call %d error = %v", i, err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("registry called %d times, want 1 (cached)", got)
	}
}

func TestSearch_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	if _, err := client.Search(context.Background(), Query{Gene: "AKT1", Variant: "E17K", CancerType: "breast cancer"}); err == nil {
		t.Error("Search() want error on 502, got nil")
	}
}

func TestSearch_BreakerOpensAfterFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	// Distinct queries bypass the cache; three consecutive failures trip the
	// breaker so the fourth fails fast.
	genes := []string{"A", "B", "C", "D"}
	var lastErr error
	for _, g := range genes {
		_, lastErr = client.Search(context.Background(), Query{Gene: g, Variant: "X", CancerType: "breast cancer"})
	}
	if lastErr == nil {
		t.Fatal("Search() want error with breaker open, got nil")
	}
}
