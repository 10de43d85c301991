package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"opsflow/internal/platform/optional"
)

// Patch collects column assignments for a partial UPDATE. Column names are
// quoted with pgx.Identifier and every value is bound as a parameter.
type Patch struct {
	sets    []assignment
	touched string
}

type assignment struct {
	column string
	value  any
}

// Cond is an equality predicate in the WHERE clause of a patch.
type Cond struct {
	Column string
	Value  any
}

func Eq(column string, value any) Cond {
	return Cond{Column: column, Value: value}
}

func NewPatch() *Patch {
	return &Patch{}
}

func (p *Patch) Set(column string, value any) *Patch {
	for i := range p.sets {
		if p.sets[i].column == column {
			p.sets[i].value = value
			return p
		}
	}
	p.sets = append(p.sets, assignment{column: column, value: value})
	return p
}

// Touch sets column to now() whenever the patch is applied.
func (p *Patch) Touch(column string) *Patch {
	p.touched = column
	return p
}

func (p *Patch) Empty() bool {
	return len(p.sets) == 0
}

func (p *Patch) Columns() []string {
	out := make([]string, 0, len(p.sets))
	for _, s := range p.sets {
		out = append(out, s.column)
	}
	return out
}

// Build renders the UPDATE statement and its arguments.
func (p *Patch) Build(table string, where ...Cond) (string, []any, error) {
	if p.Empty() {
		return "", nil, fmt.Errorf("patch for %s has no columns", table)
	}
	if len(where) == 0 {
		return "", nil, fmt.Errorf("patch for %s has no predicate", table)
	}
	args := make([]any, 0, len(p.sets)+len(where))
	parts := make([]string, 0, len(p.sets)+1)
	for _, s := range p.sets {
		args = append(args, s.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", pgx.Identifier{s.column}.Sanitize(), len(args)))
	}
	if p.touched != "" {
		parts = append(parts, pgx.Identifier{p.touched}.Sanitize()+" = now()")
	}
	conds := make([]string, 0, len(where))
	for _, c := range where {
		args = append(args, c.Value)
		conds = append(conds, fmt.Sprintf("%s = $%d", pgx.Identifier{c.Column}.Sanitize(), len(args)))
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(parts, ", "),
		strings.Join(conds, " AND "),
	)
	return sql, args, nil
}

// SetPtr adds column when value is non-nil.
func SetPtr[T any](p *Patch, column string, value *T) {
	if value != nil {
		p.Set(column, *value)
	}
}

// SetOptional adds column when the field was present in the request; an explicit null writes NULL.
func SetOptional[T any](p *Patch, column string, value optional.Value[T]) {
	if !value.Set {
		return
	}
	if value.Null {
		p.Set(column, nil)
		return
	}
	p.Set(column, value.V)
}

// SetText is SetOptional for nullable text columns; an empty string is stored as NULL.
func SetText(p *Patch, column string, value optional.Value[string]) {
	if !value.Set {
		return
	}
	p.Set(column, NullIfEmpty(value.V))
}
