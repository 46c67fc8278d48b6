// Package nool checks every VDGS endpoint listed by the vACDM directory for active flights.
package nool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plvacc/vdgs/internal/httpjson"
	"github.com/plvacc/vdgs/internal/vacdm"
)

// Source is the vACDM API as seen by the poller. *vacdm.Client satisfies it.
type Source interface {
	Directory(ctx context.Context) (vacdm.Directory, error)
	Flights(ctx context.Context, endpoint string) (int, error)
}

// DiscoveryError means the directory itself could not be fetched; nothing was polled.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("error fetching airport list: %s", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Result is the outcome of polling one airport
type Result struct {
	ICAO     string
	Endpoint string
	Flights  int
	Err      error
}

// Line renders the result as a single report line
func (r Result) Line() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: error on request (%s).", r.ICAO, httpjson.SingleLine(r.Err.Error()))
	case r.Flights == 0:
		return fmt.Sprintf("%s: no active flights.", r.ICAO)
	default:
		return fmt.Sprintf("%s: %d active flights.", r.ICAO, r.Flights)
	}
}

// Summary counts what a run did
type Summary struct {
	Airports int
	Skipped  int
	Polled   int
	Failed   int
	Flights  int
}

// Poller fetches the directory and polls the first endpoint of every airport
type Poller struct {
	source      Source
	logger      *slog.Logger
	parallelism int
}

// NewPoller creates a poller running at most parallelism requests at once
func NewPoller(source Source, logger *slog.Logger, parallelism int) *Poller {
	return &Poller{
		source:      source,
		logger:      logger,
		parallelism: max(1, parallelism),
	}
}

// Run fetches the directory and reports one result per airport with endpoints, in directory order.
// A failed directory fetch is returned as *DiscoveryError before anything is reported.
func (p *Poller) Run(ctx context.Context, report Reporter) (Summary, error) {
	startTime := time.Now()

	dir, err := p.source.Directory(ctx)
	if err != nil {
		return Summary{}, &DiscoveryError{Err: err}
	}

	p.logger.Info("airport directory fetched", "airports", len(dir.Airports))

	summary, err := p.Poll(ctx, dir.Airports, report.Report)
	if err != nil {
		return summary, err
	}

	if err := report.Close(); err != nil {
		return summary, fmt.Errorf("failed to finish report: %w", err)
	}

	p.logger.Info("poll completed",
		"duration", time.Since(startTime),
		"airports", summary.Airports,
		"skipped", summary.Skipped,
		"polled", summary.Polled,
		"failed", summary.Failed,
		"flights", summary.Flights)

	return summary, nil
}

// Poll polls the airports and hands every result to emit in input order,
// regardless of the order in which the requests complete.
func (p *Poller) Poll(ctx context.Context, airports []vacdm.Airport, emit func(Result) error) (Summary, error) {
	summary := Summary{Airports: len(airports)}

	eligible := make([]vacdm.Airport, 0, len(airports))
	for _, a := range airports {
		if len(a.Endpoints) == 0 {
			p.logger.Debug("skipping airport without endpoints", "icao", a.ICAO)
			summary.Skipped++
			continue
		}
		eligible = append(eligible, a)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(eligible))
	done := make([]chan struct{}, len(eligible))
	for i := range done {
		done[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(p.parallelism)

	spawned := make(chan struct{})
	go func() {
		defer close(spawned)
		for i, a := range eligible {
			g.Go(func() error {
				defer close(done[i])
				results[i] = p.poll(ctx, a)
				return nil
			})
		}
	}()

	var emitErr error
	for i := range eligible {
		<-done[i]
		if emitErr != nil || ctx.Err() != nil {
			continue
		}

		r := results[i]
		summary.Polled++
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Flights += r.Flights
		}

		if err := emit(r); err != nil {
			emitErr = fmt.Errorf("failed to report %s: %w", r.ICAO, err)
			cancel()
		}
	}

	<-spawned
	_ = g.Wait()

	if emitErr != nil {
		return summary, emitErr
	}
	return summary, ctx.Err()
}

func (p *Poller) poll(ctx context.Context, a vacdm.Airport) Result {
	// Only the first endpoint is consulted.
	endpoint := a.Endpoints[0]

	n, err := p.source.Flights(ctx, endpoint)
	if err != nil {
		p.logger.Warn("airport request failed",
			"icao", a.ICAO,
			"url", endpoint,
			"error", err)
		return Result{ICAO: a.ICAO, Endpoint: endpoint, Err: err}
	}

	p.logger.Debug("airport polled",
		"icao", a.ICAO,
		"url", endpoint,
		"flights", n)

	return Result{ICAO: a.ICAO, Endpoint: endpoint, Flights: n}
}
