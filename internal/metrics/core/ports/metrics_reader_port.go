package ports

import (
	"context"

	"kpi-service/internal/metrics/core/domain"
)

// AggregateQuery asks for a grouped aggregation over the primary fact table.
// Strategy is DirectColumn or DerivedRatio.
type AggregateQuery struct {
	Strategy domain.Strategy
	Filter   domain.FilterContext
	Limit    int // 0 = unbounded
}

// ResolverQuery asks a cross-source resolver for per-entity values.
type ResolverQuery struct {
	Resolver domain.ResolverRef
	Filter   domain.FilterContext
	Limit    int // 0 = unbounded
}

// MetricsReaderPort is the data-source boundary. Every method returns rows
// ranked by value descending.
type MetricsReaderPort interface {
	QueryAggregate(ctx context.Context, q AggregateQuery) ([]domain.AggregationRow, error)
	Resolve(ctx context.Context, q ResolverQuery) ([]domain.AggregationRow, error)
}
