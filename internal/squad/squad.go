// Package squad runs the per-patient domain fetch fan-out. All five domain
// fetchers run concurrently under one deadline each; the join always returns
// a slot for every domain, with failures and timeouts captured in the slot
// rather than aborting the patient.
package squad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faithogundimu/core/internal/fetch"
	"github.com/faithogundimu/core/pkg/models"
)

// ResultSet holds one fetch result per domain. Every domain in
// models.DomainOrder() is present after a run.
type ResultSet map[models.DomainTag]fetch.Result

// Failures returns the domains whose fetch failed or timed out, in domain
// order.
func (rs ResultSet) Failures() []models.DomainTag {
	var failed []models.DomainTag
	for _, tag := range models.DomainOrder() {
		if r, ok := rs[tag]; ok && r.Err != nil {
			failed = append(failed, tag)
		}
	}
	return failed
}

// Squad owns the domain fetchers for one deployment and fans them out per
// patient.
type Squad struct {
	fetchers []fetch.Fetcher
	timeout  time.Duration
	logf     func(format string, args ...any)
}

// Option configures a Squad.
type Option func(*Squad)

// WithTimeout sets the per-fetcher deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Squad) { s.timeout = d }
}

// WithLogf directs squad debug output.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Squad) { s.logf = logf }
}

// New builds a squad over the given fetchers. Exactly one fetcher per domain
// is required.
func New(fetchers []fetch.Fetcher, opts ...Option) (*Squad, error) {
	seen := make(map[models.DomainTag]bool, len(fetchers))
	for _, f := range fetchers {
		if seen[f.Domain()] {
			return nil, fmt.Errorf("duplicate fetcher for domain %s", f.Domain())
		}
		seen[f.Domain()] = true
	}
	for _, tag := range models.DomainOrder() {
		if !seen[tag] {
			return nil, fmt.Errorf("no fetcher for domain %s", tag)
		}
	}

	s := &Squad{
		fetchers: fetchers,
		timeout:  15 * time.Second,
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run fans out all fetchers for one patient and joins their results. A
// fetcher error or deadline expiry is captured in that domain's slot; Run
// itself errors only when the parent context is already cancelled.
func (s *Squad) Run(ctx context.Context, patientID string) (ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("squad run for %s: %w", patientID, err)
	}

	type slot struct {
		domain models.DomainTag
		result fetch.Result
	}
	slots := make(chan slot, len(s.fetchers))

	var wg sync.WaitGroup
	for _, f := range s.fetchers {
		wg.Add(1)
		go func(f fetch.Fetcher) {
			defer wg.Done()
			slots <- slot{domain: f.Domain(), result: s.fetchOne(ctx, f, patientID)}
		}(f)
	}
	wg.Wait()
	close(slots)

	results := make(ResultSet, len(s.fetchers))
	for sl := range slots {
		results[sl.domain] = sl.result
	}
	return results, nil
}

// fetchOne runs a single fetcher under the squad deadline, converting any
// failure into a captured DataSourceError.
func (s *Squad) fetchOne(ctx context.Context, f fetch.Fetcher, patientID string) fetch.Result {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := f.Fetch(fctx, patientID)
	elapsed := time.Since(start)

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded)
		s.logf("squad: %s fetch for %s failed after %s (timeout=%v): %v", f.Domain(), patientID, elapsed.Round(time.Millisecond), timedOut, err)
		return fetch.Result{
			Domain: f.Domain(),
			Err: &fetch.DataSourceError{
				Domain:   f.Domain(),
				Source:   string(f.Domain()),
				TimedOut: timedOut,
				Err:      err,
			},
		}
	}

	s.logf("squad: %s fetch for %s done in %s (found=%v)", f.Domain(), patientID, elapsed.Round(time.Millisecond), result.Found())
	result.Domain = f.Domain()
	return result
}
