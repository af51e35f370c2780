package domain

import "sort"

// DefaultPageSize caps the number of ranked rows and records.
const DefaultPageSize = 100

// RankRows orders rows by raw value descending and keeps the first limit.
// Ties keep their input order.
func RankRows(rows []AggregationRow, limit int) []AggregationRow {
	out := append([]AggregationRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RawValue > out[j].RawValue
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type cell struct {
	sum   float64
	count int
}

type entityAcc struct {
	name     string
	category string
	cells    map[PlatformKey]*cell
}

// EntityValues is the raw (unformatted) per-platform view of one entity.
type EntityValues struct {
	Name     string
	Category string
	Values   map[PlatformKey]float64
}

// Collapse groups rows by entity in first-seen order and fills every
// platform of the fixed set plus the "all" rollup.
func Collapse(rows []AggregationRow, rollup Rollup, limit int) []EntityValues {
	index := make(map[string]*entityAcc)
	var order []*entityAcc

	for _, r := range rows {
		pk, ok := PlatformKeyOf(r.Platform)
		if !ok {
			continue
		}
		acc, seen := index[r.EntityName]
		if !seen {
			acc = &entityAcc{name: r.EntityName, category: r.Category, cells: make(map[PlatformKey]*cell)}
			index[r.EntityName] = acc
			order = append(order, acc)
		}
		c := acc.cells[pk]
		if c == nil {
			c = &cell{}
			acc.cells[pk] = c
		}
		c.sum += r.RawValue
		c.count++
	}

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	out := make([]EntityValues, 0, len(order))
	for _, acc := range order {
		vals := make(map[PlatformKey]float64, len(Platforms)+1)
		for _, p := range Platforms {
			vals[p] = cellValue(acc.cells[p], rollup)
		}
		vals[AllPlatforms] = rollupAll(vals, rollup)
		out = append(out, EntityValues{Name: acc.name, Category: acc.category, Values: vals})
	}
	return out
}

func cellValue(c *cell, rollup Rollup) float64 {
	if c == nil || c.count == 0 {
		return 0
	}
	if rollup == RollupMean {
		return c.sum / float64(c.count)
	}
	return c.sum
}

// rollupAll is the sum of platform values for additive metrics and the mean
// of the non-zero platform values for ratio metrics.
func rollupAll(vals map[PlatformKey]float64, rollup Rollup) float64 {
	var sum float64
	var nonZero int
	for _, p := range Platforms {
		v := vals[p]
		sum += v
		if v != 0 {
			nonZero++
		}
	}
	if rollup == RollupMean {
		if nonZero == 0 {
			return 0
		}
		return sum / float64(nonZero)
	}
	return sum
}

// BuildRecords turns ranked rows into formatted records. previous holds the
// comparison period (nil when there is none) and drives the delta column.
func BuildRecords(def MetricDefinition, rows, previous []AggregationRow, limit int) []SkuMetricRecord {
	current := Collapse(rows, def.Rollup(), limit)

	var prevByName map[string]EntityValues
	if previous != nil {
		prev := Collapse(previous, def.Rollup(), 0)
		prevByName = make(map[string]EntityValues, len(prev))
		for _, p := range prev {
			prevByName[p.Name] = p
		}
	}

	out := make([]SkuMetricRecord, 0, len(current))
	for _, ev := range current {
		rec := SkuMetricRecord{
			Name:      ev.Name,
			Category:  ev.Category,
			Platforms: make(map[PlatformKey]PlatformValue, len(ev.Values)),
		}
		prev, hasPrev := prevByName[ev.Name]
		for pk, raw := range ev.Values {
			delta := Absent
			if hasPrev {
				delta = FormatDelta(raw, prev.Values[pk])
			}
			rec.Platforms[pk] = PlatformValue{
				Raw:   raw,
				Value: Format(raw, def.Display),
				Delta: delta,
			}
		}
		out = append(out, rec)
	}
	return out
}

// EntityNames lists distinct entity names in first-seen order.
func EntityNames(rows []AggregationRow) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.EntityName]; ok {
			continue
		}
		seen[r.EntityName] = struct{}{}
		out = append(out, r.EntityName)
	}
	return out
}
