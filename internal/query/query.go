// Package query builds filtered, sorted list queries from client input.
//
// Values supplied by the client only ever reach the database as bound
// parameters. Column names and sort directions come from a fixed Spec, so
// nothing the client sends is written into SQL text.
package query

import (
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// Match selects how a filter compares its column to the bound value.
type Match int

const (
	// Contains is a case-insensitive substring match.
	Contains Match = iota
	// Exact is an equality match.
	Exact
)

// Filter binds a request parameter to a column expression.
type Filter struct {
	Param  string
	Column string
	Match  Match
}

// Spec is the per-entity allow-list of filters and sort keys.
type Spec struct {
	Filters []Filter
	// Sorts maps a public sortBy value to a column expression.
	Sorts       map[string]string
	DefaultSort string
	// TieBreaker is appended to every ORDER BY so equal keys order stably.
	TieBreaker string
}

// Params is the raw client input for a list request.
type Params struct {
	Values    map[string]string
	SortBy    string
	SortOrder string
}

// ParamsFromQuery collects params from a URL query string. The first value
// of each key wins.
func ParamsFromQuery(q url.Values) Params {
	p := Params{
		Values:    make(map[string]string, len(q)),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	for key := range q {
		if key == "sortBy" || key == "sortOrder" {
			continue
		}
		p.Values[key] = q.Get(key)
	}
	return p
}

// Predicate is one parameterized WHERE condition.
type Predicate struct {
	SQL  string
	Args []interface{}
}

// Where returns a predicate for every filter with a non-blank value, in
// Spec order. Params without a filter are ignored.
func (s Spec) Where(p Params) []Predicate {
	preds := make([]Predicate, 0, len(s.Filters))
	for _, f := range s.Filters {
		v := strings.TrimSpace(p.Values[f.Param])
		if v == "" {
			continue
		}
		switch f.Match {
		case Exact:
			preds = append(preds, Predicate{SQL: f.Column + " = ?", Args: []interface{}{v}})
		default:
			preds = append(preds, Predicate{
				SQL:  "LOWER(" + f.Column + ") LIKE LOWER(?)",
				Args: []interface{}{"%" + v + "%"},
			})
		}
	}
	return preds
}

// Direction normalizes a client sort order to ASC or DESC.
func Direction(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		return "DESC"
	}
	return "ASC"
}

// OrderBy returns the ORDER BY expression (without the keyword). Unknown sort
// keys fall back to DefaultSort.
func (s Spec) OrderBy(p Params) string {
	col, ok := s.Sorts[p.SortBy]
	if !ok {
		col = s.Sorts[s.DefaultSort]
	}
	dir := Direction(p.SortOrder)

	var b strings.Builder
	if col != "" {
		b.WriteString(col)
		b.WriteByte(' ')
		b.WriteString(dir)
	}
	if s.TieBreaker != "" && s.TieBreaker != col {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.TieBreaker)
		b.WriteString(" ASC")
	}
	return b.String()
}

// Apply adds the filters to tx as WHERE conditions and sets the order.
// Call it after any GROUP BY so the conditions stay on rows.
func (s Spec) Apply(tx *gorm.DB, p Params) *gorm.DB {
	for _, pred := range s.Where(p) {
		tx = tx.Where(pred.SQL, pred.Args...)
	}
	if order := s.OrderBy(p); order != "" {
		tx = tx.Order(order)
	}
	return tx
}
