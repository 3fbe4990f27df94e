package reports

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"gorm.io/gorm"
)

// Store is the slice of the storage adapter the runner needs.
type Store interface {
	Conn(ctx context.Context) (*gorm.DB, error)
	Driver() string
}

// Result is a tabular query result. Each row maps column name to value.
type Result struct {
	Query   string                   `json:"query"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// Values returns row i in column order.
func (r *Result) Values(i int) []interface{} {
	out := make([]interface{}, len(r.Columns))
	for j, c := range r.Columns {
		out[j] = r.Rows[i][c]
	}
	return out
}

type Runner struct {
	store Store
	now   func() time.Time
}

func NewRunner(store Store) *Runner {
	return &Runner{store: store, now: time.Now}
}

// Dialect reports the SQL dialect of the underlying store.
func (r *Runner) Dialect() (Dialect, error) {
	d, err := DialectFor(r.store.Driver())
	if err != nil {
		return nil, apperror.ConnectionFailed(err)
	}
	return d, nil
}

// Run executes text exactly as given with args bound to its placeholders.
// An empty result is not an error.
func (r *Runner) Run(ctx context.Context, text string, args ...interface{}) (*Result, error) {
	db, err := r.store.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return query(db, text, args...)
}

// RunReadOnly is Run inside a read-only transaction, which MySQL and
// PostgreSQL enforce. The transaction is always rolled back.
func (r *Runner) RunReadOnly(ctx context.Context, text string, args ...interface{}) (*Result, error) {
	db, err := r.store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	tx := db.Begin(&sql.TxOptions{ReadOnly: true})
	if tx.Error != nil {
		return nil, apperror.QueryFailed(tx.Error, text)
	}
	defer tx.Rollback()
	return query(tx, text, args...)
}

func query(db *gorm.DB, text string, args ...interface{}) (*Result, error) {
	rows, err := db.Raw(text, args...).Rows()
	if err != nil {
		return nil, apperror.QueryFailed(err, text)
	}
	defer rows.Close()

	res, err := collect(rows)
	if err != nil {
		return nil, apperror.QueryFailed(err, text)
	}
	res.Query = text
	return res, nil
}

// RunReport renders the catalog entry for the store's dialect and today,
// then runs it.
func (r *Runner) RunReport(ctx context.Context, key string) (Report, *Result, error) {
	report, ok := Lookup(key)
	if !ok {
		return Report{}, nil, apperror.NotFound("report", key)
	}
	d, err := r.Dialect()
	if err != nil {
		return report, nil, err
	}

	q := report.Build(d, r.now())
	res, err := r.Run(ctx, q.Text, q.Args...)
	if err != nil {
		return report, nil, err
	}
	return report, res, nil
}

func collect(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols, Rows: []map[string]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			row[c] = normalize(values[i], types[i].DatabaseTypeName())
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

// normalize turns driver values into JSON and CSV friendly ones: text
// instead of bytes, numbers for decimals, ISO dates for midnight times.
func normalize(v interface{}, dbType string) interface{} {
	switch t := v.(type) {
	case []byte:
		return normalizeText(string(t), dbType)
	case string:
		return normalizeText(t, dbType)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	return v
}

func normalizeText(s, dbType string) interface{} {
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NUMERIC", "NEWDECIMAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "BIGINT", "INT", "INTEGER":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return s
}

// FormatValue renders a result cell for text outputs.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

// Number reports v as a float when it is numeric.
func Number(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
