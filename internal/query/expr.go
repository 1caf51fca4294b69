package query

import (
	"fmt"
	"strings"
)

// Expr — вычисляемое выражение для списка SELECT (аналог аннотации):
// рендерится в SQL-фрагмент и аргументы с тем же сдвигом плейсхолдеров,
// что и Cond.
type Expr interface {
	Expr(argOffset int) (string, []any)
}

// F — ссылка на колонку внутри выражения.
type F string

func (f F) Expr(int) (string, []any) {
	return mustField(string(f)), nil
}

type value struct {
	v any
}

func (v value) Expr(argOffset int) (string, []any) {
	return fmt.Sprintf("$%d", argOffset+1), []any{v.v}
}

// V — связанный литерал внутри выражения.
func V(v any) Expr { return value{v} }

type fn struct {
	name string
	args []Expr
}

func (f fn) Expr(argOffset int) (string, []any) {
	parts := make([]string, 0, len(f.args))
	var args []any
	for _, arg := range f.args {
		sql, exprArgs := arg.Expr(argOffset + len(args))
		parts = append(parts, sql)
		args = append(args, exprArgs...)
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")", args
}

// Concat склеивает части в одну строку (CONCAT).
func Concat(parts ...Expr) Expr { return fn{"CONCAT", parts} }

type arith struct {
	op    string
	left  Expr
	right Expr
}

func (a arith) Expr(argOffset int) (string, []any) {
	leftSQL, leftArgs := a.left.Expr(argOffset)
	rightSQL, rightArgs := a.right.Expr(argOffset + len(leftArgs))
	return "(" + leftSQL + " " + a.op + " " + rightSQL + ")",
		append(leftArgs, rightArgs...)
}

// Mul умножает выражения (вычисляемая цена и т.п.).
func Mul(left, right Expr) Expr { return arith{"*", left, right} }

// Add складывает выражения.
func Add(left, right Expr) Expr { return arith{"+", left, right} }

// Order описывает один ключ сортировки.
type Order struct {
	Field string
	Desc  bool
}

// Asc — сортировка по возрастанию.
func Asc(field string) Order { return Order{Field: mustField(field)} }

// Desc — сортировка по убыванию.
func Desc(field string) Order { return Order{Field: mustField(field), Desc: true} }

// OrderBy рендерит ключи сортировки в "ORDER BY ...".
// Без ключей возвращает пустую строку.
func OrderBy(orders ...Order) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		direction := "ASC"
		if o.Desc {
			direction = "DESC"
		}
		parts[i] = o.Field + " " + direction
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}
