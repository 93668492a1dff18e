package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubConnStoresAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	insert := "INSERT INTO snapshots(name, version, payload, size, saved_at) VALUES($1, $2, $3, $4, $5)"
	args := []driver.NamedValue{{Value: "t"}, {Value: int64(1)}, {Value: []byte("{}")}, {Value: int64(2)}, {Value: int64(10)}}
	if _, err := conn.ExecContext(ctx, insert, args); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := conn.ExecContext(ctx, insert, args); err == nil {
		t.Fatalf("expected duplicate key error")
	}

	rows, err := conn.QueryContext(ctx, "SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE name = $1", []driver.NamedValue{{Value: "t"}})
	if err != nil {
		t.Fatalf("next version: %v", err)
	}
	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil || dest[0] != int64(2) {
		t.Fatalf("unexpected next version %v %v", dest[0], err)
	}

	res, err := conn.ExecContext(ctx, "DELETE FROM snapshots WHERE name = $1", []driver.NamedValue{{Value: "t"}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 || len(conn.Rows) != 0 {
		t.Fatalf("expected one row removed, got %d (%d left)", n, len(conn.Rows))
	}
	if _, err := conn.QueryContext(ctx, "SELECT * FROM other", nil); err == nil {
		t.Fatalf("expected unsupported query error")
	}
}
