package domain_test

import (
	"testing"

	"kpi-service/internal/metrics/core/domain"
)

func TestRankRows_DescendingStableAndCapped(t *testing.T) {
	rows := []domain.AggregationRow{
		{EntityName: "a", RawValue: 1},
		{EntityName: "b", RawValue: 5},
		{EntityName: "c", RawValue: 5},
		{EntityName: "d", RawValue: 3},
	}

	out := domain.RankRows(rows, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	if out[0].EntityName != "b" || out[1].EntityName != "c" || out[2].EntityName != "d" {
		t.Fatalf("unexpected order: %v", out)
	}
	if rows[0].EntityName != "a" {
		t.Fatalf("input must not be reordered")
	}
}

func TestCollapse_SumVersusMeanRollup(t *testing.T) {
	rows := []domain.AggregationRow{
		{EntityName: "x", Category: "Dairy", Platform: "zepto", RawValue: 10},
		{EntityName: "x", Category: "Dairy", Platform: "Blinkit", RawValue: 20},
		{EntityName: "x", Category: "Dairy", Platform: "jiomart", RawValue: 1000},
	}

	sum := domain.Collapse(rows, domain.RollupSum, 0)
	if len(sum) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(sum))
	}
	if got := sum[0].Values[domain.AllPlatforms]; got != 30 {
		t.Fatalf("sum rollup: expected 30, got %v", got)
	}

	mean := domain.Collapse(rows, domain.RollupMean, 0)
	if got := mean[0].Values[domain.AllPlatforms]; got != 15 {
		t.Fatalf("mean rollup: expected 15, got %v", got)
	}

	for _, p := range domain.Platforms {
		if _, ok := sum[0].Values[p]; !ok {
			t.Fatalf("expected platform %s to be present", p)
		}
	}
	if len(sum[0].Values) != len(domain.Platforms)+1 {
		t.Fatalf("unknown platforms must be dropped, got %v", sum[0].Values)
	}
}

func TestCollapse_DuplicatePlatformRows(t *testing.T) {
	rows := []domain.AggregationRow{
		{EntityName: "x", Platform: "Swiggy Instamart", RawValue: 40},
		{EntityName: "x", Platform: "instamart", RawValue: 60},
	}

	if got := domain.Collapse(rows, domain.RollupSum, 0)[0].Values["instamart"]; got != 100 {
		t.Fatalf("sum: expected 100, got %v", got)
	}
	if got := domain.Collapse(rows, domain.RollupMean, 0)[0].Values["instamart"]; got != 50 {
		t.Fatalf("mean: expected 50, got %v", got)
	}
}

func TestCollapse_FirstSeenOrderAndLimit(t *testing.T) {
	rows := []domain.AggregationRow{
		{EntityName: "b", Platform: "zepto", RawValue: 9},
		{EntityName: "a", Platform: "zepto", RawValue: 8},
		{EntityName: "b", Platform: "amazon", RawValue: 1},
		{EntityName: "c", Platform: "zepto", RawValue: 7},
	}

	out := domain.Collapse(rows, domain.RollupSum, 2)
	if len(out) != 2 || out[0].Name != "b" || out[1].Name != "a" {
		t.Fatalf("unexpected entities: %+v", out)
	}
}

func TestBuildRecords_FormatsEveryColumn(t *testing.T) {
	def, _ := domain.NewRegistry().Lookup("availability")
	rows := []domain.AggregationRow{
		{EntityName: "Toor Dal", Category: "Staples", Platform: "zepto", RawValue: 87.54},
	}

	recs := domain.BuildRecords(def, rows, nil, 100)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Name != "Toor Dal" || rec.Category != "Staples" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Platforms) != len(domain.Platforms)+1 {
		t.Fatalf("expected every platform plus all, got %d", len(rec.Platforms))
	}
	if got := rec.Platforms["zepto"]; got.Value != "87.5%" || got.Raw != 87.54 || got.Delta != domain.Absent {
		t.Fatalf("unexpected zepto cell: %+v", got)
	}
	if got := rec.Platforms["flipkart"].Value; got != domain.Absent {
		t.Fatalf("expected absent flipkart, got %s", got)
	}
	if got := rec.Platforms[domain.AllPlatforms].Value; got != "87.5%" {
		t.Fatalf("expected all=87.5%%, got %s", got)
	}
}

func TestBuildRecords_DeltaFromPreviousRows(t *testing.T) {
	def, _ := domain.NewRegistry().Lookup("offtake")
	cur := []domain.AggregationRow{{EntityName: "x", Platform: "zepto", RawValue: 150}}
	prev := []domain.AggregationRow{{EntityName: "x", Platform: "zepto", RawValue: 100}}

	recs := domain.BuildRecords(def, cur, prev, 100)
	if got := recs[0].Platforms["zepto"].Delta; got != "+50.0%" {
		t.Fatalf("expected +50.0%%, got %s", got)
	}
	if got := recs[0].Platforms["amazon"].Delta; got != domain.Absent {
		t.Fatalf("expected absent delta, got %s", got)
	}

	// an entity missing from the previous period has no comparison
	recs = domain.BuildRecords(def, cur, []domain.AggregationRow{}, 100)
	if got := recs[0].Platforms["zepto"].Delta; got != domain.Absent {
		t.Fatalf("expected absent delta, got %s", got)
	}
}

func TestEntityNames(t *testing.T) {
	names := domain.EntityNames([]domain.AggregationRow{
		{EntityName: "b"}, {EntityName: "a"}, {EntityName: "b"},
	})
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("unexpected names: %v", names)
	}
}
