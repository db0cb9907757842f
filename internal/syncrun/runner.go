package syncrun

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"schemasync/internal/metadata"
)

// Result is the outcome of syncing one entity.
type Result struct {
	Entity   string        `json:"entity"`
	Table    string        `json:"table"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OK reports whether the entity synced cleanly.
func (r Result) OK() bool { return r.Err == nil }

// Report collects the results of one Run, in the order entities were given.
type Report struct {
	ID       ulid.ULID `json:"id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Results  []Result  `json:"results"`
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Runner syncs many entities against one database. Entities are independent,
// so a failure in one does not stop the others.
type Runner struct {
	Provider    metadata.ConnProvider
	Mapper      metadata.ColumnMapper
	Reconciler  metadata.Reconciler
	Concurrency int

	// OnDone is called after each entity finishes. It may be called from
	// several goroutines at once.
	OnDone func(Result)
}

// Run syncs every entity and returns a report together with the joined
// errors of all failed entities. Canceling ctx stops entities that have not
// started yet.
func (r *Runner) Run(ctx context.Context, entities []*metadata.Entity) (*Report, error) {
	report := &Report{
		ID:      ulid.Make(),
		Started: time.Now(),
		Results: make([]Result, len(entities)),
	}

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, e := range entities {
		g.Go(func() error {
			res := r.syncOne(ctx, e)
			report.Results[i] = res
			if res.Err != nil {
				log.Printf("ERROR: sync %s: %v", e.Name(), res.Err)
			}
			if r.OnDone != nil {
				r.OnDone(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range report.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	report.Finished = time.Now()
	log.Printf("Sync run %s: %d entities, %d failed (%s)",
		report.ID, len(entities), len(errs), report.Finished.Sub(report.Started).Round(time.Millisecond))
	return report, errors.Join(errs...)
}

func (r *Runner) syncOne(ctx context.Context, e *metadata.Entity) Result {
	res := Result{Entity: e.Name(), Table: e.Table(), Columns: len(e.Fields())}
	start := time.Now()
	if err := ctx.Err(); err != nil {
		res.Err = err
	} else {
		res.Err = e.Sync(ctx, r.Provider, r.Mapper, r.Reconciler)
	}
	res.Duration = time.Since(start)
	return res
}
