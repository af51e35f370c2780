package postgres

import (
	"context"
	"strings"

	"kpi-service/internal/metrics/core/domain"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"
)

// buildMarketShareNumerator sums own-brand sales per (product, platform).
// Category is not a grouping key: a product listed under two categories
// still has one share per platform.
func buildMarketShareNumerator(f domain.FilterContext) (string, []any, error) {
	t := salesFact
	conds := append(wherePredicates(t, f), sq.Eq{"comp_flag": 0})
	return psql.
		Select(t.entity, "MIN("+t.category+") AS category", t.platform, "COALESCE(SUM(sales), 0)::float8 AS own_sales").
		From(t.name).
		Where(conds).
		GroupBy(t.entity, t.platform).
		OrderBy(t.entity, t.platform).
		ToSql()
}

// buildMarketShareDenominator sums every product's sales per platform,
// competitors included. Brand and entity restrictions do not apply here.
func buildMarketShareDenominator(f domain.FilterContext) (string, []any, error) {
	t := salesFact
	b := psql.
		Select(t.platform, "COALESCE(SUM(sales), 0)::float8 AS total_sales").
		From(t.name).
		GroupBy(t.platform)
	if conds := wherePredicates(t, f.WithoutBrand()); len(conds) > 0 {
		b = b.Where(conds)
	}
	return b.ToSql()
}

func (r *MetricsRepository) marketShare(ctx context.Context, f domain.FilterContext, limit int) ([]domain.AggregationRow, error) {
	numQuery, numArgs, err := buildMarketShareNumerator(f)
	if err != nil {
		return nil, err
	}
	denQuery, denArgs, err := buildMarketShareDenominator(f)
	if err != nil {
		return nil, err
	}

	var numerators []domain.AggregationRow
	var totals map[string]float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.queryRows(gctx, numQuery, numArgs)
		numerators = rows
		return err
	})
	g.Go(func() error {
		t, err := r.platformTotals(gctx, denQuery, denArgs)
		totals = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return domain.RankRows(combineMarketShare(numerators, totals), limit), nil
}

func (r *MetricsRepository) platformTotals(ctx context.Context, query string, args []any) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var platform string
		var total float64
		if err := rows.Scan(&platform, &total); err != nil {
			return nil, err
		}
		totals[strings.ToLower(platform)] += total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

// combineMarketShare divides each own-brand row by its platform total.
// A platform without a total yields 0 for every entity on it.
func combineMarketShare(numerators []domain.AggregationRow, totals map[string]float64) []domain.AggregationRow {
	out := make([]domain.AggregationRow, 0, len(numerators))
	for _, n := range numerators {
		den := totals[strings.ToLower(n.Platform)]
		out = append(out, domain.AggregationRow{
			EntityName: n.EntityName,
			Category:   n.Category,
			Platform:   n.Platform,
			RawValue:   domain.SafeDivide(n.RawValue, den) * 100,
		})
	}
	return out
}
