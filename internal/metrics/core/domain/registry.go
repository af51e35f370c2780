package domain

import "strings"

// DefaultMetricKey is used when a requested metric is not registered.
const DefaultMetricKey = "offtake"

var metricAliases = map[string]string{
	"osa":             "availability",
	"share_of_search": "sos",
	"sales":           "offtake",
	"promo":           "promo_depth",
	"discount":        "promo_depth",
	"ms":              "market_share",
}

// Registry maps normalized metric keys to definitions. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	defs  map[string]MetricDefinition
	order []string
}

// NewRegistry builds the fixed metric vocabulary.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]MetricDefinition)}

	r.add(MetricDefinition{Key: "offtake", Label: "Offtake", Display: DisplayCurrency,
		Strategy: DirectColumn{Column: "sales"}})
	r.add(MetricDefinition{Key: "ad_spend", Label: "Ad Spend", Display: DisplayCurrency,
		Strategy: DirectColumn{Column: "ad_spend"}})
	r.add(MetricDefinition{Key: "ad_sales", Label: "Ad Sales", Display: DisplayCurrency,
		Strategy: DirectColumn{Column: "ad_sales"}})
	r.add(MetricDefinition{Key: "clicks", Label: "Clicks", Display: DisplayCount,
		Strategy: DirectColumn{Column: "clicks"}})
	r.add(MetricDefinition{Key: "impressions", Label: "Impressions", Display: DisplayCount,
		Strategy: DirectColumn{Column: "impressions"}})

	r.add(MetricDefinition{Key: "availability", Label: "Availability", Display: DisplayPercentage,
		Strategy: DerivedRatio{Numerator: "SUM(neno_osa)", Denominator: "SUM(deno_osa)", Scale: 100}})
	r.add(MetricDefinition{Key: "roas", Label: "ROAS", Display: DisplayMultiplier,
		Strategy: DerivedRatio{Numerator: "SUM(ad_sales)", Denominator: "SUM(ad_spend)", Scale: 1}})
	r.add(MetricDefinition{Key: "ctr", Label: "CTR", Display: DisplayPercentage,
		Strategy: DerivedRatio{Numerator: "SUM(clicks)", Denominator: "SUM(impressions)", Scale: 100}})
	r.add(MetricDefinition{Key: "cpc", Label: "CPC", Display: DisplayCurrency,
		Strategy: DerivedRatio{Numerator: "SUM(ad_spend)", Denominator: "SUM(clicks)", Scale: 1}})
	r.add(MetricDefinition{Key: "cpm", Label: "CPM", Display: DisplayCurrency,
		Strategy: DerivedRatio{Numerator: "SUM(ad_spend)", Denominator: "SUM(impressions)", Scale: 1000}})
	r.add(MetricDefinition{Key: "promo_depth", Label: "Promo Depth", Display: DisplayPercentage,
		Strategy: DerivedRatio{Numerator: "SUM(mrp - selling_price)", Denominator: "SUM(mrp)", Scale: 100}})

	r.add(MetricDefinition{Key: "sos", Label: "Share of Search", Display: DisplayPercentage,
		Strategy: CrossSource{Resolver: ResolverShareOfSearch}})
	r.add(MetricDefinition{Key: "organic_sos", Label: "Organic Share of Search", Display: DisplayPercentage,
		Strategy: CrossSource{Resolver: ResolverOrganicShareOfSearch}})
	r.add(MetricDefinition{Key: "paid_sos", Label: "Paid Share of Search", Display: DisplayPercentage,
		Strategy: CrossSource{Resolver: ResolverPaidShareOfSearch}})
	r.add(MetricDefinition{Key: "market_share", Label: "Market Share", Display: DisplayPercentage,
		Strategy: CrossSource{Resolver: ResolverMarketShare}})

	return r
}

func (r *Registry) add(d MetricDefinition) {
	if _, dup := r.defs[d.Key]; dup {
		panic("duplicate metric key: " + d.Key)
	}
	r.defs[d.Key] = d
	r.order = append(r.order, d.Key)
}

// Lookup resolves a metric key. Unknown keys resolve to the default
// definition with ok=false; callers decide how to report that.
func (r *Registry) Lookup(key string) (MetricDefinition, bool) {
	k := NormalizeMetricKey(key)
	if alias, ok := metricAliases[k]; ok {
		k = alias
	}
	if d, ok := r.defs[k]; ok {
		return d, true
	}
	return r.defs[DefaultMetricKey], false
}

// Catalogue returns every definition in registration order.
func (r *Registry) Catalogue() []MetricDefinition {
	out := make([]MetricDefinition, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.defs[k])
	}
	return out
}

// NormalizeMetricKey turns "Ad Spend" or "ad-spend" into "ad_spend".
func NormalizeMetricKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	for strings.Contains(k, "__") {
		k = strings.ReplaceAll(k, "__", "_")
	}
	return k
}
