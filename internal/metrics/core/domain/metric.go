package domain

// DisplayClass decides how a raw value is rendered.
type DisplayClass string

const (
	DisplayCurrency   DisplayClass = "currency"
	DisplayPercentage DisplayClass = "percentage"
	DisplayMultiplier DisplayClass = "multiplier"
	DisplayCount      DisplayClass = "count"
)

// Rollup decides how the synthetic "all" platform is derived from the per-platform values.
type Rollup int

const (
	RollupSum  Rollup = iota // additive metrics
	RollupMean               // ratio metrics: mean of non-zero platform values
)

// Strategy is the closed set of computation strategies.
// Only DirectColumn, DerivedRatio and CrossSource implement it.
type Strategy interface {
	strategy()
}

// DirectColumn is SUM(Column) over the primary fact table.
type DirectColumn struct {
	Column string
}

// DerivedRatio is Numerator / Denominator * Scale evaluated in one grouped query.
// Numerator and Denominator are aggregate SQL fragments from the registry, never user input.
type DerivedRatio struct {
	Numerator   string
	Denominator string
	Scale       float64
}

// CrossSource delegates to a resolver over a different fact shape.
type CrossSource struct {
	Resolver ResolverRef
}

func (DirectColumn) strategy() {}
func (DerivedRatio) strategy() {}
func (CrossSource) strategy()  {}

// ResolverRef names a cross-source resolver.
type ResolverRef int

const (
	ResolverShareOfSearch ResolverRef = iota + 1
	ResolverOrganicShareOfSearch
	ResolverPaidShareOfSearch
	ResolverMarketShare
)

func (r ResolverRef) String() string {
	switch r {
	case ResolverShareOfSearch:
		return "share_of_search"
	case ResolverOrganicShareOfSearch:
		return "organic_share_of_search"
	case ResolverPaidShareOfSearch:
		return "paid_share_of_search"
	case ResolverMarketShare:
		return "market_share"
	default:
		return "unknown"
	}
}

// MetricDefinition is immutable once registered.
type MetricDefinition struct {
	Key      string
	Label    string
	Strategy Strategy
	Display  DisplayClass
}

// Rollup is derived from the strategy so a metric cannot be summed in one
// place and averaged in another.
func (d MetricDefinition) Rollup() Rollup {
	switch d.Strategy.(type) {
	case DirectColumn:
		return RollupSum
	case DerivedRatio, CrossSource:
		return RollupMean
	default:
		return RollupSum
	}
}

// StrategyName is the wire name of the strategy variant.
func (d MetricDefinition) StrategyName() string {
	switch d.Strategy.(type) {
	case DirectColumn:
		return "direct"
	case DerivedRatio:
		return "ratio"
	case CrossSource:
		return "cross_source"
	default:
		return "unknown"
	}
}
