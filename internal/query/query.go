// Package query собирает условия выборки в дерево и рендерит его
// в параметризованный SQL. Дерево из полевых и логических узлов позволяет
// комбинировать условия через AND/OR/NOT до того, как они попадут
// в текст запроса, и не даёт значениям утечь в SQL мимо плейсхолдеров.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cond — узел дерева условий. SQL рендерит узел в текст условия
// и список аргументов; argOffset — число уже занятых плейсхолдеров,
// нумерация продолжается с $argOffset+1, чтобы условия можно было
// встраивать в больший запрос.
type Cond interface {
	SQL(argOffset int) (string, []any)
}

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// mustField проверяет идентификатор колонки. Имена колонок не бывают
// пользовательским вводом, поэтому ошибка здесь — ошибка программиста.
func mustField(field string) string {
	if !fieldPattern.MatchString(field) {
		panic(fmt.Sprintf("query: invalid field identifier %q", field))
	}
	return field
}

type cmp struct {
	field string
	op    string
	value any
}

func (c cmp) SQL(argOffset int) (string, []any) {
	return fmt.Sprintf("%s %s $%d", c.field, c.op, argOffset+1), []any{c.value}
}

// Eq — поле равно значению.
func Eq(field string, value any) Cond { return cmp{mustField(field), "=", value} }

// Ne — поле не равно значению.
func Ne(field string, value any) Cond { return cmp{mustField(field), "<>", value} }

// Gt — поле больше значения.
func Gt(field string, value any) Cond { return cmp{mustField(field), ">", value} }

// Gte — поле больше или равно значению.
func Gte(field string, value any) Cond { return cmp{mustField(field), ">=", value} }

// Lt — поле меньше значения.
func Lt(field string, value any) Cond { return cmp{mustField(field), "<", value} }

// Lte — поле меньше или равно значению.
func Lte(field string, value any) Cond { return cmp{mustField(field), "<=", value} }

type contains struct {
	field  string
	needle string
}

func (c contains) SQL(argOffset int) (string, []any) {
	return fmt.Sprintf("%s ILIKE $%d", c.field, argOffset+1),
		[]any{"%" + escapeLike(c.needle) + "%"}
}

// escapeLike экранирует метасимволы LIKE, чтобы подстрока искалась буквально.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Contains — поле содержит подстроку без учёта регистра.
func Contains(field, needle string) Cond { return contains{mustField(field), needle} }

type fieldCmp struct {
	left  string
	op    string
	right string
}

func (c fieldCmp) SQL(int) (string, []any) {
	return fmt.Sprintf("%s %s %s", c.left, c.op, c.right), nil
}

// EqField сравнивает две колонки между собой.
func EqField(left, right string) Cond {
	return fieldCmp{mustField(left), "=", mustField(right)}
}

type in struct {
	field  string
	values []any
}

func (c in) SQL(argOffset int) (string, []any) {
	if len(c.values) == 0 {
		// Пустой список не совпадает ни с чем.
		return "FALSE", nil
	}
	placeholders := make([]string, len(c.values))
	for i := range c.values {
		placeholders[i] = fmt.Sprintf("$%d", argOffset+1+i)
	}
	return fmt.Sprintf("%s IN (%s)", c.field, strings.Join(placeholders, ", ")), c.values
}

// In — поле входит в список значений.
func In(field string, values ...any) Cond { return in{mustField(field), values} }

type inSubquery struct {
	field string
	sub   string
	args  []any
}

func (c inSubquery) SQL(argOffset int) (string, []any) {
	sub := renumber(c.sub, argOffset)
	return fmt.Sprintf("%s IN (%s)", c.field, sub), c.args
}

// InSubquery — поле входит в результат вложенного запроса.
// Плейсхолдеры подзапроса нумеруются с $1 и сдвигаются при рендере.
func InSubquery(field, sub string, args ...any) Cond {
	return inSubquery{mustField(field), sub, args}
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// renumber сдвигает все плейсхолдеры подзапроса на offset за один проход:
// пошаговая замена текстом ломается, когда уже сдвинутый $11 содержит $1.
func renumber(sub string, offset int) string {
	if offset == 0 {
		return sub
	}
	return placeholderPattern.ReplaceAllStringFunc(sub, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		return "$" + strconv.Itoa(n+offset)
	})
}

type isNull struct {
	field string
}

func (c isNull) SQL(int) (string, []any) {
	return c.field + " IS NULL", nil
}

// IsNull — поле не заполнено.
func IsNull(field string) Cond { return isNull{mustField(field)} }

type logical struct {
	op    string
	conds []Cond
}

func (l logical) SQL(argOffset int) (string, []any) {
	if len(l.conds) == 0 {
		return "TRUE", nil
	}
	if len(l.conds) == 1 {
		return l.conds[0].SQL(argOffset)
	}

	parts := make([]string, 0, len(l.conds))
	var args []any
	for _, cond := range l.conds {
		sql, condArgs := cond.SQL(argOffset + len(args))
		parts = append(parts, sql)
		args = append(args, condArgs...)
	}
	return "(" + strings.Join(parts, " "+l.op+" ") + ")", args
}

// And объединяет условия через AND.
func And(conds ...Cond) Cond { return logical{"AND", conds} }

// Or объединяет условия через OR.
func Or(conds ...Cond) Cond { return logical{"OR", conds} }

type not struct {
	cond Cond
}

func (n not) SQL(argOffset int) (string, []any) {
	sql, args := n.cond.SQL(argOffset)
	return "NOT (" + sql + ")", args
}

// Not инвертирует условие.
func Not(cond Cond) Cond { return not{cond} }
