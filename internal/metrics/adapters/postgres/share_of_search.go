package postgres

import (
	"context"

	"kpi-service/internal/metrics/core/domain"

	sq "github.com/Masterminds/squirrel"
)

type sponsoredScope int

const (
	sponsoredAny sponsoredScope = iota
	sponsoredOnlyOrganic
	sponsoredOnlyPaid
)

// buildShareOfSearchQuery counts own-product exposures (numerator) and all
// exposures (denominator) per (searched product, platform) in one pass.
func buildShareOfSearchQuery(f domain.FilterContext, scope sponsoredScope) (string, []any, error) {
	t := keywordFact
	b := psql.
		Select(
			t.entity,
			t.platform,
			"COUNT(*) FILTER (WHERE own_flag = 1) AS own_count",
			"COUNT(*) AS total_count",
		).
		From(t.name).
		GroupBy(t.entity, t.platform).
		OrderBy(t.entity, t.platform)

	conds := wherePredicates(t, f)
	switch scope {
	case sponsoredOnlyOrganic:
		conds = append(conds, sq.Eq{"sponsored_flag": 0})
	case sponsoredOnlyPaid:
		conds = append(conds, sq.Eq{"sponsored_flag": 1})
	}
	if len(conds) > 0 {
		b = b.Where(conds)
	}
	return b.ToSql()
}

func (r *MetricsRepository) shareOfSearch(ctx context.Context, f domain.FilterContext, scope sponsoredScope, limit int) ([]domain.AggregationRow, error) {
	query, args, err := buildShareOfSearchQuery(f, scope)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AggregationRow
	for rows.Next() {
		var entity, platform string
		var own, total int64
		if err := rows.Scan(&entity, &platform, &own, &total); err != nil {
			return nil, err
		}
		out = append(out, domain.AggregationRow{
			EntityName: entity,
			Platform:   platform,
			RawValue:   domain.SafeDivide(float64(own), float64(total)) * 100,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RankRows(out, limit), nil
}
