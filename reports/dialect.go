package reports

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/food-listing-dashboard/config"
)

// Dialect hides the few places where report SQL differs between backends.
// Everything else in the catalog is plain SQL with bound parameters.
type Dialect interface {
	Name() string
	// DaysBetween yields the whole number of days from earlier to later.
	DaysBetween(later, earlier string) string
	// YearMonth formats a date expression as YYYY-MM.
	YearMonth(expr string) string
	// Month formats a date expression as a two digit month.
	Month(expr string) string
	// IntDiv divides two integer expressions, truncating.
	IntDiv(a, b string) string
	// QuoteIdentifiers quotes the given mixed case identifiers where the
	// backend would otherwise fold them.
	QuoteIdentifiers(query string, idents []string) string
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return SQLite{}, nil
	case config.DriverMySQL:
		return MySQL{}, nil
	case config.DriverPostgres:
		return Postgres{}, nil
	}
	return nil, fmt.Errorf("no report dialect for driver %q", driver)
}

type SQLite struct{}

func (SQLite) Name() string { return config.DriverSQLite }

func (SQLite) DaysBetween(later, earlier string) string {
	return fmt.Sprintf("CAST(julianday(%s) - julianday(%s) AS INTEGER)", later, earlier)
}

func (SQLite) YearMonth(expr string) string { return fmt.Sprintf("strftime('%%Y-%%m', %s)", expr) }
func (SQLite) Month(expr string) string     { return fmt.Sprintf("strftime('%%m', %s)", expr) }
func (SQLite) IntDiv(a, b string) string    { return fmt.Sprintf("(%s) / (%s)", a, b) }

func (SQLite) QuoteIdentifiers(query string, _ []string) string { return query }

type MySQL struct{}

func (MySQL) Name() string { return config.DriverMySQL }

func (MySQL) DaysBetween(later, earlier string) string {
	return fmt.Sprintf("DATEDIFF(%s, %s)", later, earlier)
}

func (MySQL) YearMonth(expr string) string { return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", expr) }
func (MySQL) Month(expr string) string     { return fmt.Sprintf("DATE_FORMAT(%s, '%%m')", expr) }
func (MySQL) IntDiv(a, b string) string    { return fmt.Sprintf("(%s) DIV (%s)", a, b) }

func (MySQL) QuoteIdentifiers(query string, _ []string) string { return query }

type Postgres struct{}

func (Postgres) Name() string { return config.DriverPostgres }

func (Postgres) DaysBetween(later, earlier string) string {
	return fmt.Sprintf("(CAST(%s AS DATE) - CAST(%s AS DATE))", later, earlier)
}

func (Postgres) YearMonth(expr string) string { return fmt.Sprintf("to_char(%s, 'YYYY-MM')", expr) }
func (Postgres) Month(expr string) string     { return fmt.Sprintf("to_char(%s, 'MM')", expr) }
func (Postgres) IntDiv(a, b string) string    { return fmt.Sprintf("(%s) / (%s)", a, b) }

// QuoteIdentifiers wraps each listed identifier in double quotes, skipping
// string literals and already quoted names. Matching is case sensitive so
// COUNT( and Count stay distinct.
func (Postgres) QuoteIdentifiers(query string, idents []string) string {
	set := make(map[string]struct{}, len(idents))
	for _, id := range idents {
		set[id] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(query) + 2*len(idents))
	for i := 0; i < len(query); {
		ch := query[i]
		switch {
		case ch == '\'' || ch == '"':
			j := i + 1
			for j < len(query) && query[j] != ch {
				j++
			}
			if j < len(query) {
				j++
			}
			b.WriteString(query[i:j])
			i = j
		case isIdentStart(ch):
			j := i + 1
			for j < len(query) && isIdentPart(query[j]) {
				j++
			}
			word := query[i:j]
			if _, ok := set[word]; ok {
				b.WriteByte('"')
				b.WriteString(word)
				b.WriteByte('"')
			} else {
				b.WriteString(word)
			}
			i = j
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
