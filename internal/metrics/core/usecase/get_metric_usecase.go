package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kpi-service/internal/metrics/core/cache"
	"kpi-service/internal/metrics/core/domain"
	"kpi-service/internal/metrics/core/ports"
	"kpi-service/internal/platform/logger"
)

var ErrUnsupportedStrategy = errors.New("unsupported metric strategy")

const DefaultTTL = 5 * time.Minute

type GetMetricInput struct {
	Metric  string
	Filters domain.RawFilter
}

type GetMetricUseCase struct {
	reader   ports.MetricsReaderPort
	registry *domain.Registry
	cache    *cache.Cache[domain.MetricResult]
	ttl      time.Duration
	pageSize int
	log      logger.Logger
}

type Option func(*GetMetricUseCase)

func WithCache(c *cache.Cache[domain.MetricResult]) Option {
	return func(uc *GetMetricUseCase) { uc.cache = c }
}

func WithTTL(ttl time.Duration) Option {
	return func(uc *GetMetricUseCase) { uc.ttl = ttl }
}

func WithPageSize(n int) Option {
	return func(uc *GetMetricUseCase) { uc.pageSize = n }
}

func WithLogger(l logger.Logger) Option {
	return func(uc *GetMetricUseCase) { uc.log = l }
}

func NewGetMetricUseCase(reader ports.MetricsReaderPort, registry *domain.Registry, opts ...Option) *GetMetricUseCase {
	uc := &GetMetricUseCase{
		reader:   reader,
		registry: registry,
		ttl:      DefaultTTL,
		pageSize: domain.DefaultPageSize,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(uc)
	}
	if uc.cache == nil {
		uc.cache = cache.New[domain.MetricResult](nil)
	}
	return uc
}

// Execute resolves, computes (or serves from cache) and formats one metric.
// It never fails: data-source errors are logged and yield an empty result.
// Returned records are shared with the cache and must not be mutated.
func (uc *GetMetricUseCase) Execute(ctx context.Context, in GetMetricInput) domain.MetricResult {
	log := logger.C(ctx, uc.log)

	def, known := uc.registry.Lookup(in.Metric)
	if !known {
		log.Warn().
			Str("metric", in.Metric).
			Str("fallback", def.Key).
			Msg("unknown metric, using default")
	}

	// The query runs to completion even if the caller goes away, so its
	// result still lands in the cache.
	computeCtx := context.WithoutCancel(ctx)

	computed := false
	key := domain.CacheKey(def.Key, in.Filters)
	res, err := uc.cache.GetOrCompute(key, func() (domain.MetricResult, error) {
		computed = true
		return uc.compute(computeCtx, def, in.Filters)
	}, uc.ttl)
	if err != nil {
		log.Error().Err(err).
			Str("metric", def.Key).
			Msg("metric query failed")
		return domain.MetricResult{Metric: def, Defaulted: !known, Records: []domain.SkuMetricRecord{}}
	}

	log.Debug().
		Str("metric", def.Key).
		Bool("cached", !computed).
		Int("records", len(res.Records)).
		Msg("metric served")

	res.Defaulted = !known
	return res
}

// Catalogue lists every registered metric.
func (uc *GetMetricUseCase) Catalogue() []domain.MetricDefinition {
	return uc.registry.Catalogue()
}

func (uc *GetMetricUseCase) compute(ctx context.Context, def domain.MetricDefinition, raw domain.RawFilter) (domain.MetricResult, error) {
	filter := domain.NormalizeFilters(raw)

	rows, err := uc.fetch(ctx, def, filter, uc.pageSize)
	if err != nil {
		return domain.MetricResult{}, err
	}
	rows = domain.RankRows(rows, uc.pageSize)

	var previous []domain.AggregationRow
	if prevFilter, ok := filter.PreviousPeriod(); ok && len(rows) > 0 {
		prevFilter = prevFilter.WithEntities(domain.EntityNames(rows))
		previous, err = uc.fetch(ctx, def, prevFilter, 0)
		if err != nil {
			// deltas render as absent; the current period is still returned
			log := logger.C(ctx, uc.log)
			log.Warn().Err(err).
				Str("metric", def.Key).
				Msg("previous period query failed")
			previous = nil
		} else if previous == nil {
			previous = []domain.AggregationRow{}
		}
	}

	return domain.MetricResult{
		Metric:  def,
		Records: domain.BuildRecords(def, rows, previous, uc.pageSize),
	}, nil
}

// fetch routes a definition to the query builder or to its resolver.
func (uc *GetMetricUseCase) fetch(ctx context.Context, def domain.MetricDefinition, f domain.FilterContext, limit int) ([]domain.AggregationRow, error) {
	switch st := def.Strategy.(type) {
	case domain.DirectColumn, domain.DerivedRatio:
		return uc.reader.QueryAggregate(ctx, ports.AggregateQuery{Strategy: st, Filter: f, Limit: limit})
	case domain.CrossSource:
		return uc.reader.Resolve(ctx, ports.ResolverQuery{Resolver: st.Resolver, Filter: f, Limit: limit})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedStrategy, def.Strategy)
	}
}
