package query_test

import (
	"reflect"
	"testing"

	"github.com/bmaxtar/storefront/internal/query"
)

func assertSQL(t *testing.T, cond query.Cond, offset int, wantSQL string, wantArgs []any) {
	t.Helper()

	sql, args := cond.SQL(offset)
	if sql != wantSQL {
		t.Fatalf("unexpected sql:\n got  %s\n want %s", sql, wantSQL)
	}
	if len(wantArgs) == 0 && len(args) == 0 {
		return
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args: got %v, want %v", args, wantArgs)
	}
}

func TestComparisons(t *testing.T) {
	assertSQL(t, query.Eq("collection_id", 3), 0, "collection_id = $1", []any{3})
	assertSQL(t, query.Ne("payment_status", "P"), 0, "payment_status <> $1", []any{"P"})
	assertSQL(t, query.Lt("inventory", 10), 0, "inventory < $1", []any{10})
	assertSQL(t, query.Gt("id", 5), 2, "id > $3", []any{5})
	assertSQL(t, query.Gte("unit_price", 20), 0, "unit_price >= $1", []any{20})
	assertSQL(t, query.Lte("unit_price", 20), 0, "unit_price <= $1", []any{20})
}

func TestContains(t *testing.T) {
	assertSQL(t, query.Contains("title", "coffee"), 0,
		"title ILIKE $1", []any{"%coffee%"})

	// Метасимволы LIKE ищутся буквально.
	assertSQL(t, query.Contains("title", "100%_off"), 0,
		"title ILIKE $1", []any{`%100\%\_off%`})
}

func TestAndOrNot(t *testing.T) {
	cond := query.And(
		query.Lt("inventory", 10),
		query.Lt("unit_price", 20),
	)
	assertSQL(t, cond, 0, "(inventory < $1 AND unit_price < $2)", []any{10, 20})

	cond = query.Or(
		query.Lt("inventory", 10),
		query.Lt("unit_price", 20),
	)
	assertSQL(t, cond, 0, "(inventory < $1 OR unit_price < $2)", []any{10, 20})

	cond = query.And(
		query.Lt("inventory", 10),
		query.Not(query.Lt("unit_price", 20)),
	)
	assertSQL(t, cond, 0, "(inventory < $1 AND NOT (unit_price < $2))", []any{10, 20})
}

func TestNestedCombinators(t *testing.T) {
	cond := query.Or(
		query.And(query.Lt("inventory", 10), query.Eq("collection_id", 3)),
		query.Not(query.Contains("title", "coffee")),
	)
	assertSQL(t, cond, 0,
		"((inventory < $1 AND collection_id = $2) OR NOT (title ILIKE $3))",
		[]any{10, 3, "%coffee%"})
}

func TestSingleChildCollapses(t *testing.T) {
	assertSQL(t, query.And(query.Eq("id", 1)), 0, "id = $1", []any{1})
	assertSQL(t, query.Or(), 0, "TRUE", nil)
}

func TestEqField(t *testing.T) {
	assertSQL(t, query.EqField("inventory", "unit_price"), 0,
		"inventory = unit_price", nil)
}

func TestIn(t *testing.T) {
	assertSQL(t, query.In("id", 1, 2, 3), 0, "id IN ($1, $2, $3)", []any{1, 2, 3})
	assertSQL(t, query.In("id", 7), 1, "id IN ($2)", []any{7})
	assertSQL(t, query.In("id"), 0, "FALSE", nil)
}

func TestInSubquery(t *testing.T) {
	cond := query.InSubquery("id", "SELECT DISTINCT product_id FROM order_items")
	assertSQL(t, cond, 0,
		"id IN (SELECT DISTINCT product_id FROM order_items)", nil)

	cond = query.InSubquery("id",
		"SELECT product_id FROM order_items WHERE quantity > $1", 5)
	assertSQL(t, cond, 2,
		"id IN (SELECT product_id FROM order_items WHERE quantity > $3)", []any{5})
}

func TestInSubqueryRenumberAcrossDecade(t *testing.T) {
	// Сдвинутый $2 становится $11; повторный текстовый проход по $1
	// превращал его в $101. Девять значений In занимают $1..$9,
	// подзапрос должен получить $10 и $11.
	cond := query.And(
		query.In("collection_id", 1, 2, 3, 4, 5, 6, 7, 8, 9),
		query.InSubquery("id",
			"SELECT product_id FROM order_items WHERE quantity > $1 AND unit_price < $2",
			5, 10),
	)
	assertSQL(t, cond, 0,
		"(collection_id IN ($1, $2, $3, $4, $5, $6, $7, $8, $9) AND "+
			"id IN (SELECT product_id FROM order_items WHERE quantity > $10 AND unit_price < $11))",
		[]any{1, 2, 3, 4, 5, 6, 7, 8, 9, 5, 10})
}

func TestIsNull(t *testing.T) {
	assertSQL(t, query.IsNull("birth_date"), 0, "birth_date IS NULL", nil)
}

func TestOffsetThreadsThroughTree(t *testing.T) {
	cond := query.And(
		query.Eq("a", 1),
		query.Or(query.Eq("b", 2), query.Eq("c", 3)),
	)
	assertSQL(t, cond, 5, "(a = $6 AND (b = $7 OR c = $8))", []any{1, 2, 3})
}

func TestQualifiedFieldAllowed(t *testing.T) {
	assertSQL(t, query.Eq("products.collection_id", 3), 0,
		"products.collection_id = $1", []any{3})
}

func TestInvalidFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid field identifier")
		}
	}()
	query.Eq("title; DROP TABLE products", 1)
}
