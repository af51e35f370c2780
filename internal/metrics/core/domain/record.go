package domain

import "strings"

// PlatformKey identifies a marketplace column in the output.
type PlatformKey string

// AllPlatforms is the synthetic rollup column.
const AllPlatforms PlatformKey = "all"

// Platforms is the fixed platform set every record carries.
var Platforms = []PlatformKey{"blinkit", "zepto", "instamart", "bigbasket", "amazon", "flipkart"}

var platformAliases = map[string]PlatformKey{
	"swiggy":           "instamart",
	"swiggy instamart": "instamart",
	"swiggy_instamart": "instamart",
	"big basket":       "bigbasket",
	"bb now":           "bigbasket",
	"flipkart minutes": "flipkart",
	"amazon fresh":     "amazon",
}

// PlatformKeyOf maps a platform name as stored in the fact tables to its key.
// ok is false for platforms outside the fixed set.
func PlatformKeyOf(name string) (PlatformKey, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if k, ok := platformAliases[n]; ok {
		return k, true
	}
	for _, p := range Platforms {
		if string(p) == n {
			return p, true
		}
	}
	return "", false
}

// AggregationRow is one grouped result from a query or resolver.
type AggregationRow struct {
	EntityName string
	Category   string
	Platform   string
	RawValue   float64
}

// PlatformValue is one formatted cell.
type PlatformValue struct {
	Raw   float64
	Value string
	Delta string
}

// SkuMetricRecord is the per-entity output unit.
type SkuMetricRecord struct {
	Name      string
	Category  string
	Platforms map[PlatformKey]PlatformValue
}

// MetricResult is what a getMetric call returns.
type MetricResult struct {
	Metric    MetricDefinition
	Defaulted bool
	Records   []SkuMetricRecord
}
