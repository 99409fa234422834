// Package filter translates declarative filter conditions into gorm
// queries. Admin listing endpoints accept arbitrary field/operator/value
// triples from clients; the engine is deliberately lenient and drops
// anything it cannot map onto the target model instead of failing the
// request.
package filter

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var ErrInvalidPage = errors.New("invalid_page")

// Condition is one declarative predicate against a model field.
// Field names may be given as struct field names or column names.
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

var schemaCache = &sync.Map{}

// Apply appends a WHERE clause per recognized condition. Conditions with
// unknown fields or unknown operators are dropped. Operator matching is
// case-insensitive.
func Apply(tx *gorm.DB, model any, conds []Condition) *gorm.DB {
	for _, cond := range conds {
		field, ok := lookupField(tx, model, cond.Field)
		if !ok {
			continue
		}
		col := field.DBName
		switch strings.ToLower(strings.TrimSpace(cond.Op)) {
		case "eq", "":
			tx = tx.Where(col+" = ?", coerce(field, cond.Value))
		case "ne":
			tx = tx.Where(col+" <> ?", coerce(field, cond.Value))
		case "lt":
			tx = tx.Where(col+" < ?", coerce(field, cond.Value))
		case "lte":
			tx = tx.Where(col+" <= ?", coerce(field, cond.Value))
		case "gt":
			tx = tx.Where(col+" > ?", coerce(field, cond.Value))
		case "gte":
			tx = tx.Where(col+" >= ?", coerce(field, cond.Value))
		case "in":
			tx = tx.Where(col+" IN ?", collection(field, cond.Value))
		case "not_in":
			tx = tx.Where(col+" NOT IN ?", collection(field, cond.Value))
		case "like":
			// The value is passed through untouched: callers supply their own
			// wildcards, and a pattern without any behaves as equality.
			tx = tx.Where(col+" LIKE ?", coerce(field, cond.Value))
		case "between":
			lo, hi, ok := pair(field, cond.Value)
			if !ok {
				continue
			}
			tx = tx.Where(col+" BETWEEN ? AND ?", lo, hi)
		case "is_null":
			// Only literal booleans toggle the null check. Strings like
			// "true" are ignored rather than guessed at.
			want, ok := cond.Value.(bool)
			if !ok {
				continue
			}
			if want {
				tx = tx.Where(col + " IS NULL")
			} else {
				tx = tx.Where(col + " IS NOT NULL")
			}
		}
	}
	return tx
}

// ApplyOrder appends ORDER BY clauses. Each entry is a field name with an
// optional "-" (descending) or "+" (ascending) prefix. Unknown fields are
// skipped; if nothing survives, the store's natural order is kept.
func ApplyOrder(tx *gorm.DB, model any, orderBy []string) *gorm.DB {
	for _, raw := range orderBy {
		name := strings.TrimSpace(raw)
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(strings.TrimPrefix(name, "-"), "+")
		field, ok := lookupField(tx, model, name)
		if !ok {
			continue
		}
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: field.DBName},
			Desc:   desc,
		})
	}
	return tx
}

// Page describes one window of a paginated listing.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Paginate counts the filtered set, then loads the requested window into
// dest. Page numbers are 1-based and never clamped: a page past the end
// yields an empty dest alongside the true totals.
func Paginate(tx *gorm.DB, page, limit int, dest any) (Page, error) {
	if page < 1 || limit < 1 {
		return Page{}, ErrInvalidPage
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Page{}, err
	}
	if err := tx.Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return Page{}, err
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Page{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func lookupField(tx *gorm.DB, model any, name string) (*schema.Field, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	sch, err := schema.Parse(model, schemaCache, tx.NamingStrategy)
	if err != nil {
		return nil, false
	}
	field := sch.LookUpField(name)
	if field == nil || field.DBName == "" {
		return nil, false
	}
	return field, true
}

var timeType = reflect.TypeOf(time.Time{})

func temporal(field *schema.Field) bool {
	if field.DataType == schema.Time {
		return true
	}
	ft := field.FieldType
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	return ft == timeType
}

// iso8601Layouts covers the date forms admin clients actually send.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerce opportunistically parses string values aimed at temporal columns.
// A string that fails to parse is passed through as-is so the query still
// runs (and most likely matches nothing).
func coerce(field *schema.Field, value any) any {
	s, ok := value.(string)
	if !ok || !temporal(field) {
		return value
	}
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

// collection normalizes in/not_in values: slices are kept, a scalar string
// is split on commas, any other scalar becomes a one-element set.
func collection(field *schema.Field, value any) []any {
	rv := reflect.ValueOf(value)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, coerce(field, rv.Index(i).Interface()))
		}
		return out
	}
	if s, ok := value.(string); ok && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			out = append(out, coerce(field, strings.TrimSpace(part)))
		}
		return out
	}
	return []any{coerce(field, value)}
}

func pair(field *schema.Field, value any) (any, any, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != 2 {
		return nil, nil, false
	}
	return coerce(field, rv.Index(0).Interface()), coerce(field, rv.Index(1).Interface()), true
}
