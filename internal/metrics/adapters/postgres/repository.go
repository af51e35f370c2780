package postgres

import (
	"context"
	"errors"
	"fmt"

	"kpi-service/internal/metrics/core/domain"
	"kpi-service/internal/metrics/core/ports"
)

var (
	ErrUnsupportedStrategy = errors.New("unsupported metric strategy")
	ErrUnknownResolver     = errors.New("unknown resolver")
)

type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

type MetricsRepository struct {
	db DB
}

func NewMetricsRepository(db DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

var _ ports.MetricsReaderPort = (*MetricsRepository)(nil)

// QueryAggregate runs the grouped aggregation for direct and ratio metrics.
func (r *MetricsRepository) QueryAggregate(ctx context.Context, q ports.AggregateQuery) ([]domain.AggregationRow, error) {
	query, args, err := buildAggregateQuery(q.Strategy, q.Filter, q.Limit)
	if err != nil {
		return nil, err
	}
	return r.queryRows(ctx, query, args)
}

// Resolve dispatches to the cross-source resolver named in q.
func (r *MetricsRepository) Resolve(ctx context.Context, q ports.ResolverQuery) ([]domain.AggregationRow, error) {
	switch q.Resolver {
	case domain.ResolverShareOfSearch:
		return r.shareOfSearch(ctx, q.Filter, sponsoredAny, q.Limit)
	case domain.ResolverOrganicShareOfSearch:
		return r.shareOfSearch(ctx, q.Filter, sponsoredOnlyOrganic, q.Limit)
	case domain.ResolverPaidShareOfSearch:
		return r.shareOfSearch(ctx, q.Filter, sponsoredOnlyPaid, q.Limit)
	case domain.ResolverMarketShare:
		return r.marketShare(ctx, q.Filter, q.Limit)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownResolver, q.Resolver)
	}
}

// queryRows scans (entity, category, platform, value) rows.
func (r *MetricsRepository) queryRows(ctx context.Context, query string, args []any) ([]domain.AggregationRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AggregationRow
	for rows.Next() {
		var row domain.AggregationRow
		if err := rows.Scan(&row.EntityName, &row.Category, &row.Platform, &row.RawValue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
