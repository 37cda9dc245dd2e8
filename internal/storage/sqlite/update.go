package sqlite

import (
	"fmt"
	"strings"

	"taskboard/internal/models"
)

// updateBuilder accumulates (column, value) pairs for the fields present in
// a partial update and renders one parameterized statement.
type updateBuilder struct {
	table string
	cols  []string
	args  []any
}

func newUpdate(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

func (b *updateBuilder) set(col string, v any) {
	b.cols = append(b.cols, col+" = ?")
	b.args = append(b.args, v)
}

func (b *updateBuilder) empty() bool {
	return len(b.cols) == 0
}

// statement refreshes updated_at and returns the id of the touched row so a
// missing row surfaces as sql.ErrNoRows.
func (b *updateBuilder) statement(id int64) (string, []any) {
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ? RETURNING id`,
		b.table, strings.Join(b.cols, ", "))
	args := make([]any, 0, len(b.args)+1)
	args = append(args, b.args...)
	return query, append(args, id)
}

func setOptional[T any](b *updateBuilder, col string, o models.Optional[T]) {
	if o.Set {
		b.set(col, o.Value)
	}
}

func setNullable[T any](b *updateBuilder, col string, n models.Nullable[T]) {
	if !n.Set {
		return
	}
	if n.Null {
		b.set(col, nil)
		return
	}
	b.set(col, n.Value)
}
