package postgres

import (
	"fmt"
	"strings"

	"kpi-service/internal/metrics/core/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// factTable describes the columns a fact table exposes to filters.
// A dimension with no column is silently not filtered on that table.
type factTable struct {
	name       string
	entity     string
	category   string // empty when the table has no category column
	platform   string
	dateCol    string
	dimensions map[domain.Dimension]string
}

var salesFact = factTable{
	name:     "sales_fact",
	entity:   "product",
	category: "category",
	platform: "platform",
	dateCol:  "date",
	dimensions: map[domain.Dimension]string{
		domain.DimPlatform: "platform",
		domain.DimBrand:    "brand",
		domain.DimCategory: "category",
		domain.DimLocation: "location",
	},
}

var keywordFact = factTable{
	name:     "keyword_fact",
	entity:   "searched_product",
	platform: "platform",
	dateCol:  "date",
	dimensions: map[domain.Dimension]string{
		domain.DimPlatform: "platform",
		domain.DimLocation: "location",
	},
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// wherePredicates compiles a FilterContext into parameterized conditions
// for table t. Filter values only ever travel as bind arguments.
func wherePredicates(t factTable, f domain.FilterContext) sq.And {
	conds := sq.And{}

	for _, p := range f.Predicates() {
		col, ok := t.dimensions[p.Dimension]
		if !ok {
			continue
		}
		switch p.Match {
		case domain.MatchContains:
			conds = append(conds, sq.Expr(col+" ILIKE ?", "%"+likeEscaper.Replace(p.Value)+"%"))
		default:
			conds = append(conds, sq.Expr("LOWER("+col+") = LOWER(?)", p.Value))
		}
	}

	if dr, ok := f.Dates(); ok {
		conds = append(conds, sq.Expr(t.dateCol+" BETWEEN ? AND ?", dr.From, dr.To))
	}

	if len(f.Entities) > 0 {
		conds = append(conds, sq.Expr(t.entity+" = ANY(?)", pq.Array(f.Entities)))
	}

	return conds
}

// valueExpr renders the aggregate expression for a primary-table strategy.
func valueExpr(s domain.Strategy) (string, error) {
	switch st := s.(type) {
	case domain.DirectColumn:
		return fmt.Sprintf("COALESCE(SUM(%s), 0)::float8", st.Column), nil
	case domain.DerivedRatio:
		scale := st.Scale
		if scale == 0 {
			scale = 1
		}
		return fmt.Sprintf("COALESCE((%s)::float8 / NULLIF((%s)::float8, 0), 0) * %g",
			st.Numerator, st.Denominator, scale), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedStrategy, s)
	}
}

// buildAggregateQuery is the single grouped query behind direct and ratio metrics.
func buildAggregateQuery(s domain.Strategy, f domain.FilterContext, limit int) (string, []any, error) {
	expr, err := valueExpr(s)
	if err != nil {
		return "", nil, err
	}

	b := psql.
		Select(salesFact.entity, salesFact.category, salesFact.platform, expr+" AS value").
		From(salesFact.name).
		GroupBy(salesFact.entity, salesFact.category, salesFact.platform).
		OrderBy("value DESC", salesFact.entity, salesFact.category, salesFact.platform)

	if conds := wherePredicates(salesFact, f); len(conds) > 0 {
		b = b.Where(conds)
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return b.ToSql()
}
