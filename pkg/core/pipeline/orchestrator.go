// Package pipeline wires the screen stages into one batch run:
// universe pull -> reconcile -> resolve -> enrich -> derive -> rules
// -> report.
//
// Failure policy follows the error taxonomy: transport and schema
// failures on the universe pull abort the run before any artifact
// exists, while per-entity enrichment failures only mark that entity
// skipped. The skip count always surfaces in the report stats so
// silent data loss is observable without reading logs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	try "gopkg.in/matryer/try.v1"

	"valuescreen/pkg/core/calc"
	"valuescreen/pkg/core/config"
	"valuescreen/pkg/core/provider"
	"valuescreen/pkg/core/reconcile"
	"valuescreen/pkg/core/report"
	"valuescreen/pkg/core/resolve"
	"valuescreen/pkg/core/screen"
	"valuescreen/pkg/models"
)

// enrichAttempts bounds the retry of one entity's metrics pull. The
// requests are idempotent GETs, so re-invoking is safe.
const enrichAttempts = 3

// Orchestrator runs the screen end to end. It is single-use per run;
// no state survives between runs.
type Orchestrator struct {
	client  *provider.Client
	cfg     config.Config
	aliases reconcile.AliasTable
	log     *zap.Logger
}

// New creates an orchestrator with its collaborators injected.
func New(client *provider.Client, cfg config.Config, aliases reconcile.AliasTable, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{client: client, cfg: cfg, aliases: aliases, log: log}
}

// Run executes one complete screen and returns the assembled report.
// A non-nil error means the run produced nothing publishable.
func (o *Orchestrator) Run(ctx context.Context) (*report.RunReport, error) {
	start := time.Now()

	rows, err := o.client.FetchTable(ctx, o.cfg.UniverseTable, provider.TableQuery{
		PerPage: o.cfg.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("universe pull: %w", err)
	}
	o.log.Info("universe fetched",
		zap.String("table", o.cfg.UniverseTable),
		zap.Int("rows", len(rows)))

	recs, err := reconcile.Reconcile(rows, o.aliases)
	if err != nil {
		return nil, fmt.Errorf("reconcile universe: %w", err)
	}

	universe := resolve.Latest(recs)
	o.log.Info("universe resolved", zap.Int("entities", len(universe)))

	skipped := 0
	if o.cfg.MetricsTable != "" {
		universe, skipped = o.enrich(ctx, universe)
	}

	th := screen.Thresholds{
		MinDividendYield:       o.cfg.YieldThreshold,
		CountNegativeMultiples: o.cfg.CountNegativeMultiples,
	}

	scored := make([]models.ScoredRecord, 0, len(universe))
	for _, rec := range universe {
		sr := calc.ComputeRatios(rec)
		if !screen.Evaluable(sr) {
			skipped++
			o.log.Warn("record not evaluable, skipping",
				zap.String("ticker", rec.Ticker))
			continue
		}
		scored = append(scored, screen.Evaluate(sr, th))
	}

	rep := report.Assemble(scored, skipped, report.ConfigSnapshot{
		YieldThreshold:         o.cfg.YieldThreshold,
		CountNegativeMultiples: o.cfg.CountNegativeMultiples,
	}, o.cfg.TopCandidates, time.Now())

	o.log.Info("screen complete",
		zap.Int("considered", len(scored)+skipped),
		zap.Int("pass", len(rep.Pass)),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)))
	return rep, nil
}

// enrichResult isolates one entity's outcome. A failed entity never
// carries an error out of the pool; it becomes a skip.
type enrichResult struct {
	rec     models.CanonicalRecord
	skipped bool
}

// enrich fans the per-entity metrics pull out over a bounded worker
// pool. The concurrency cap is the rate-limit mechanism; result order
// does not matter because the assembler re-sorts. Entities are
// independent units of work, each worker writes only its own slot.
func (o *Orchestrator) enrich(ctx context.Context, recs []models.CanonicalRecord) ([]models.CanonicalRecord, int) {
	results := make([]enrichResult, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.EnrichConcurrency)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			enriched, err := o.enrichOne(gctx, rec)
			if err != nil {
				o.log.Warn("enrichment failed, entity skipped",
					zap.String("ticker", rec.Ticker),
					zap.Error(err))
				results[i] = enrichResult{skipped: true}
				return nil
			}
			results[i] = enrichResult{rec: enriched}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	out := make([]models.CanonicalRecord, 0, len(recs))
	skipped := 0
	for _, r := range results {
		if r.skipped {
			skipped++
			continue
		}
		out = append(out, r.rec)
	}
	return out, skipped
}

// enrichOne pulls the metrics rows for a single ticker and merges the
// latest one into the universe record. The universe row stays
// authoritative where both carry a value; metrics only fill gaps.
func (o *Orchestrator) enrichOne(ctx context.Context, rec models.CanonicalRecord) (models.CanonicalRecord, error) {
	var rows []models.RawRecord
	err := try.Do(func(attempt int) (bool, error) {
		var ferr error
		rows, ferr = o.client.FetchTable(ctx, o.cfg.MetricsTable, provider.TableQuery{
			Ticker:  rec.Ticker,
			PerPage: o.cfg.PageSize,
		})
		return attempt < enrichAttempts, ferr
	})
	if err != nil {
		return rec, err
	}
	if len(rows) == 0 {
		return rec, nil
	}

	// The metrics table legitimately omits most universe attributes;
	// only the identifier is required of it.
	metrics, err := reconcile.Reconcile(rows, o.aliases.WithRequired(reconcile.AttrTicker))
	if err != nil {
		return rec, fmt.Errorf("reconcile metrics for %s: %w", rec.Ticker, err)
	}

	for _, m := range resolve.Latest(metrics) {
		if m.Ticker == rec.Ticker {
			return merge(rec, m), nil
		}
	}
	return rec, nil
}

// merge fills nil fields of base from extra.
func merge(base, extra models.CanonicalRecord) models.CanonicalRecord {
	if base.Exchange == "" {
		base.Exchange = extra.Exchange
	}
	base.Price = coalesce(base.Price, extra.Price)
	base.EPS = coalesce(base.EPS, extra.EPS)
	base.BookValuePerShare = coalesce(base.BookValuePerShare, extra.BookValuePerShare)
	base.DividendPerShare = coalesce(base.DividendPerShare, extra.DividendPerShare)
	base.LongTermDebt = coalesce(base.LongTermDebt, extra.LongTermDebt)
	base.Equity = coalesce(base.Equity, extra.Equity)
	base.DividendYield = coalesce(base.DividendYield, extra.DividendYield)
	base.PERatio = coalesce(base.PERatio, extra.PERatio)
	base.PBRatio = coalesce(base.PBRatio, extra.PBRatio)
	base.DebtEquity = coalesce(base.DebtEquity, extra.DebtEquity)
	return base
}

func coalesce(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}
