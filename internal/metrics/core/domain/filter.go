package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AllValue is the sentinel meaning "no restriction" for a dimension.
const AllValue = "All"

const dateLayout = "2006-01-02"

// RawFilter is the loosely-typed filter input as received from callers.
type RawFilter map[string]any

// Dimension is a filterable column family.
type Dimension string

const (
	DimPlatform Dimension = "platform"
	DimBrand    Dimension = "brand"
	DimCategory Dimension = "category"
	DimLocation Dimension = "location"
)

// MatchMode is how a predicate value is compared against a column.
type MatchMode int

const (
	// MatchExact is case-insensitive equality (platform, category, location).
	MatchExact MatchMode = iota
	// MatchContains is case-insensitive substring (brand).
	MatchContains
)

// Predicate is one dimension restriction.
type Predicate struct {
	Dimension Dimension
	Match     MatchMode
	Value     string
}

// DateRange is an inclusive day window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FilterContext is the canonical filter set. Built once per request and
// never mutated; derivations return copies.
type FilterContext struct {
	Platform string
	Brand    string
	Category string
	Location string
	DateFrom *time.Time
	DateTo   *time.Time

	// Entities restricts results to these entity names. Set internally for
	// period comparisons; empty means unrestricted.
	Entities []string
}

var rawKeyAliases = map[string]string{
	"platform":  "platform",
	"brand":     "brand",
	"category":  "category",
	"location":  "location",
	"city":      "location",
	"datefrom":  "dateFrom",
	"date_from": "dateFrom",
	"from":      "dateFrom",
	"startdate": "dateFrom",
	"dateto":    "dateTo",
	"date_to":   "dateTo",
	"to":        "dateTo",
	"enddate":   "dateTo",
}

// NormalizeFilters builds a FilterContext from raw input. Anything
// malformed is treated as unrestricted.
func NormalizeFilters(raw RawFilter) FilterContext {
	var fc FilterContext
	var fromRaw, toRaw string

	for k, v := range raw {
		name, ok := rawKeyAliases[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		s, ok := dimensionValue(v)
		if !ok {
			continue
		}
		switch name {
		case "platform":
			fc.Platform = s
		case "brand":
			fc.Brand = s
		case "category":
			fc.Category = s
		case "location":
			fc.Location = s
		case "dateFrom":
			fromRaw = s
		case "dateTo":
			toRaw = s
		}
	}

	from, okFrom := parseDate(fromRaw)
	to, okTo := parseDate(toRaw)
	if okFrom && okTo {
		fc.DateFrom = &from
		fc.DateTo = &to
	}

	return fc
}

// dimensionValue accepts only non-empty strings that are not the All sentinel.
func dimensionValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllValue) {
		return "", false
	}
	return s, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Predicates lists the dimension restrictions in a fixed order.
func (f FilterContext) Predicates() []Predicate {
	var out []Predicate
	if f.Platform != "" {
		out = append(out, Predicate{Dimension: DimPlatform, Match: MatchExact, Value: f.Platform})
	}
	if f.Brand != "" {
		out = append(out, Predicate{Dimension: DimBrand, Match: MatchContains, Value: f.Brand})
	}
	if f.Category != "" {
		out = append(out, Predicate{Dimension: DimCategory, Match: MatchExact, Value: f.Category})
	}
	if f.Location != "" {
		out = append(out, Predicate{Dimension: DimLocation, Match: MatchExact, Value: f.Location})
	}
	return out
}

// Dates returns the date window when both bounds are present.
func (f FilterContext) Dates() (DateRange, bool) {
	if f.DateFrom == nil || f.DateTo == nil {
		return DateRange{}, false
	}
	return DateRange{From: *f.DateFrom, To: *f.DateTo}, true
}

// PreviousPeriod returns the window of equal length that ends the day
// before DateFrom. ok is false without a complete date window.
func (f FilterContext) PreviousPeriod() (FilterContext, bool) {
	dr, ok := f.Dates()
	if !ok || dr.To.Before(dr.From) {
		return FilterContext{}, false
	}
	days := int(dr.To.Sub(dr.From).Hours()/24) + 1
	prevTo := dr.From.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -(days - 1))

	cp := f
	cp.DateFrom = &prevFrom
	cp.DateTo = &prevTo
	cp.Entities = append([]string(nil), f.Entities...)
	return cp, true
}

// WithEntities returns a copy restricted to the given entity names.
func (f FilterContext) WithEntities(names []string) FilterContext {
	cp := f
	cp.Entities = append([]string(nil), names...)
	return cp
}

// WithoutBrand returns a copy with the brand and entity restrictions removed.
func (f FilterContext) WithoutBrand() FilterContext {
	cp := f
	cp.Brand = ""
	cp.Entities = nil
	return cp
}

// CacheKey is a stable serialization of metric + raw filter. Field order of
// the input does not affect the key. Names and values are quoted so no
// value can spell out another pair.
func CacheKey(metric string, raw RawFilter) string {
	pairs := make([]string, 0, len(raw))
	for k, v := range raw {
		name := strconv.Quote(strings.ToLower(strings.TrimSpace(k)))
		value := strconv.Quote(fmt.Sprintf("%T:%v", v, v))
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)

	var b strings.Builder
	b.WriteString(NormalizeMetricKey(metric))
	for _, p := range pairs {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}
