// Package testutil provides a stub database/sql driver that understands the
// snapshot repository's Postgres statements.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
)

// Row is one stored snapshot row.
type Row struct {
	Name    string
	Version int64
	Payload []byte
	Size    int64
	SavedAt int64
}

// StubConn records statements and keeps snapshot rows in memory.
type StubConn struct {
	Execs      []string
	Queries    []string
	Rows       []Row
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailCommit bool
}

var stubSeq atomic.Int64

// NewStubDB registers a uniquely named driver and returns a sql.DB backed by
// one in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

func normalize(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func argString(args []driver.NamedValue, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].Value.(string)
	return s
}

func argInt(args []driver.NamedValue, i int) int64 {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].Value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	q := normalize(query)
	switch {
	case strings.HasPrefix(q, "create table"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(q, "insert into snapshots"):
		if len(args) != 5 {
			return nil, fmt.Errorf("insert: expected 5 args, got %d", len(args))
		}
		row := Row{Name: argString(args, 0), Version: argInt(args, 1), Size: argInt(args, 3), SavedAt: argInt(args, 4)}
		row.Payload, _ = args[2].Value.([]byte)
		for _, r := range c.Rows {
			if r.Name == row.Name && r.Version == row.Version {
				return nil, fmt.Errorf("duplicate key (%s, %d)", row.Name, row.Version)
			}
		}
		c.Rows = append(c.Rows, row)
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(q, "delete from snapshots where name = $1"):
		name := argString(args, 0)
		kept := c.Rows[:0]
		removed := 0
		for _, r := range c.Rows {
			if r.Name == name {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		c.Rows = kept
		return driver.RowsAffected(removed), nil
	}
	return nil, fmt.Errorf("unsupported exec: %s", query)
}

func (c *StubConn) rowsFor(name string) []Row {
	var out []Row
	for _, r := range c.Rows {
		if r.Name == name {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.Queries = append(c.Queries, query)
	q := normalize(query)
	switch {
	case strings.HasPrefix(q, "select coalesce(max(version), 0) + 1 from snapshots where name = $1"):
		rows := c.rowsFor(argString(args, 0))
		next := int64(1)
		if len(rows) > 0 {
			next = rows[len(rows)-1].Version + 1
		}
		return &stubRows{cols: []string{"next"}, rows: [][]driver.Value{{next}}}, nil
	case strings.HasPrefix(q, "select version, payload, saved_at from snapshots where name = $1 and version = $2"):
		var out [][]driver.Value
		for _, r := range c.rowsFor(argString(args, 0)) {
			if r.Version == argInt(args, 1) {
				out = append(out, []driver.Value{r.Version, r.Payload, r.SavedAt})
			}
		}
		return &stubRows{cols: []string{"version", "payload", "saved_at"}, rows: out}, nil
	case strings.HasPrefix(q, "select version, payload, saved_at from snapshots where name = $1 order by version desc limit 1"):
		rows := c.rowsFor(argString(args, 0))
		var out [][]driver.Value
		if len(rows) > 0 {
			r := rows[len(rows)-1]
			out = append(out, []driver.Value{r.Version, r.Payload, r.SavedAt})
		}
		return &stubRows{cols: []string{"version", "payload", "saved_at"}, rows: out}, nil
	case strings.HasPrefix(q, "select version, size, saved_at from snapshots where name = $1 order by version"):
		var out [][]driver.Value
		for _, r := range c.rowsFor(argString(args, 0)) {
			out = append(out, []driver.Value{r.Version, r.Size, r.SavedAt})
		}
		return &stubRows{cols: []string{"version", "size", "saved_at"}, rows: out}, nil
	case strings.HasPrefix(q, "select distinct name from snapshots order by name"):
		seen := map[string]struct{}{}
		var names []string
		for _, r := range c.Rows {
			if _, ok := seen[r.Name]; !ok {
				seen[r.Name] = struct{}{}
				names = append(names, r.Name)
			}
		}
		sort.Strings(names)
		out := make([][]driver.Value, 0, len(names))
		for _, n := range names {
			out = append(out, []driver.Value{n})
		}
		return &stubRows{cols: []string{"name"}, rows: out}, nil
	}
	return nil, fmt.Errorf("unsupported query: %s", query)
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}

func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
