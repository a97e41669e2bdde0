// Package schemacache holds the last successfully loaded database catalog
// (spec §4.6, component C): schemas, tables, columns, functions, and types,
// refreshed from a live Postgres connection and atomically replaceable.
package schemacache

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// Schema is one entry from information_schema.schemata.
type Schema struct {
	Name string
}

// Table is one entry from information_schema.tables.
type Table struct {
	Schema string
	Name   string
}

// Column is one entry from information_schema.columns.
type Column struct {
	Schema   string
	Table    string
	Name     string
	Type     string
	Nullable bool
	Comment  string
}

// Function is one entry from pg_catalog.pg_proc, with its resolved argument
// types (spec's functions[] collection; exercised by the inlayHints
// functionArgNames provider).
type Function struct {
	Schema  string
	Name    string
	ArgType []FunctionArg
}

// FunctionArg is one positional/named argument of a cataloged function.
type FunctionArg struct {
	Name string
	Type string
}

// Type is one entry from pg_catalog.pg_type.
type Type struct {
	Schema string
	Name   string
}

// Snapshot is an immutable point-in-time view of the catalog (spec's
// "SchemaCache snapshot"). Readers borrow a *Snapshot for the duration of
// one request; it is never mutated after construction.
type Snapshot struct {
	Schemas   []Schema
	Tables    []Table
	Columns   []Column
	Functions []Function
	Types     []Type
}

// FindTable looks up a table by (schema, name); schema "" matches any.
func (s *Snapshot) FindTable(schema, name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name && (schema == "" || t.Schema == schema) {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnsOf returns every column belonging to the named table.
func (s *Snapshot) ColumnsOf(schema, table string) []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Table == table && (schema == "" || c.Schema == schema) {
			out = append(out, c)
		}
	}
	return out
}

// FindFunction looks up a cataloged function by name.
func (s *Snapshot) FindFunction(schema, name string) (Function, bool) {
	for _, f := range s.Functions {
		if f.Name == name && (schema == "" || f.Schema == schema) {
			return f, true
		}
	}
	return Function{}, false
}

var empty = &Snapshot{}

// Cache holds the current Snapshot behind a lock and coalesces concurrent
// refreshes for the same connection string via singleflight, matching the
// "at most one load in flight" rule of spec §4.6/§5.
type Cache struct {
	mu      chan struct{} // binary semaphore guarding current/connString
	current *Snapshot
	connStr string
	group   singleflight.Group
}

// New returns a Cache with an empty snapshot, ready for its first Refresh.
func New() *Cache {
	c := &Cache{mu: make(chan struct{}, 1), current: empty}
	c.mu <- struct{}{}
	return c
}

func (c *Cache) lock()   { <-c.mu }
func (c *Cache) unlock() { c.mu <- struct{}{} }

// Snapshot returns the currently held snapshot. It never blocks on a
// refresh: refreshers only take the lock at the moment of swap (spec §5).
func (c *Cache) Snapshot() *Snapshot {
	c.lock()
	defer c.unlock()
	return c.current
}

// ConnectionString returns the connection string the current snapshot (if
// any) was loaded from.
func (c *Cache) ConnectionString() string {
	c.lock()
	defer c.unlock()
	return c.connStr
}

// Refresh triggers a load for connString, coalescing concurrent calls with
// the same connString into a single in-flight load (spec §4.6). On success
// the snapshot is atomically replaced; on failure the previous snapshot is
// retained and the error is returned to every coalesced caller.
func (c *Cache) Refresh(ctx context.Context, connString string) error {
	_, err, _ := c.group.Do(connString, func() (any, error) {
		snap, loadErr := Load(ctx, connString)
		if loadErr != nil {
			return nil, loadErr
		}
		c.lock()
		c.current = snap
		c.connStr = connString
		c.unlock()
		return snap, nil
	})
	return err
}

// Load runs the fixed catalog queries against connString and builds a
// Snapshot. Any one query's failure fails the whole refresh (spec §4.6
// "partial failures are fatal for the whole refresh").
func Load(ctx context.Context, connString string) (*Snapshot, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("schemacache: connect: %w", err)
	}
	defer pool.Close()

	snap := &Snapshot{}

	if snap.Schemas, err = loadSchemas(ctx, pool); err != nil {
		return nil, fmt.Errorf("schemacache: load schemas: %w", err)
	}
	if snap.Tables, err = loadTables(ctx, pool); err != nil {
		return nil, fmt.Errorf("schemacache: load tables: %w", err)
	}
	if snap.Columns, err = loadColumns(ctx, pool); err != nil {
		return nil, fmt.Errorf("schemacache: load columns: %w", err)
	}
	if snap.Functions, err = loadFunctions(ctx, pool); err != nil {
		return nil, fmt.Errorf("schemacache: load functions: %w", err)
	}
	if snap.Types, err = loadTypes(ctx, pool); err != nil {
		return nil, fmt.Errorf("schemacache: load types: %w", err)
	}

	return snap, nil
}

const schemasQuery = `select schema_name from information_schema.schemata`

func loadSchemas(ctx context.Context, pool *pgxpool.Pool) ([]Schema, error) {
	rows, err := pool.Query(ctx, schemasQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Schema
	for rows.Next() {
		var s Schema
		if err := rows.Scan(&s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const tablesQuery = `select table_schema, table_name from information_schema.tables`

func loadTables(ctx context.Context, pool *pgxpool.Pool) ([]Table, error) {
	rows, err := pool.Query(ctx, tablesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const columnsQuery = `
select c.table_schema, c.table_name, c.column_name, c.data_type,
       c.is_nullable = 'YES',
       coalesce(pgd.description, '')
from information_schema.columns c
left join pg_catalog.pg_statio_all_tables st
       on st.schemaname = c.table_schema and st.relname = c.table_name
left join pg_catalog.pg_description pgd
       on pgd.objoid = st.relid and pgd.objsubid = c.ordinal_position`

func loadColumns(ctx context.Context, pool *pgxpool.Pool) ([]Column, error) {
	rows, err := pool.Query(ctx, columnsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Schema, &col.Table, &col.Name, &col.Type, &col.Nullable, &col.Comment); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

const functionsQuery = `
select n.nspname, p.proname,
       coalesce(array_agg(a.argname order by a.ordinality), '{}'),
       coalesce(array_agg(a.argtype order by a.ordinality), '{}')
from pg_catalog.pg_proc p
join pg_catalog.pg_namespace n on n.oid = p.pronamespace
left join lateral unnest(p.proargnames, p.proargtypes::oid[])
     with ordinality as a(argname, argtype, ordinality) on true
group by n.nspname, p.proname`

func loadFunctions(ctx context.Context, pool *pgxpool.Pool) ([]Function, error) {
	rows, err := pool.Query(ctx, functionsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Function
	for rows.Next() {
		var fn Function
		var names, types []string
		if err := rows.Scan(&fn.Schema, &fn.Name, &names, &types); err != nil {
			return nil, err
		}
		for i := range names {
			arg := FunctionArg{}
			if i < len(names) {
				arg.Name = names[i]
			}
			if i < len(types) {
				arg.Type = types[i]
			}
			fn.ArgType = append(fn.ArgType, arg)
		}
		out = append(out, fn)
	}
	return out, rows.Err()
}

const typesQuery = `
select n.nspname, t.typname
from pg_catalog.pg_type t
join pg_catalog.pg_namespace n on n.oid = t.typnamespace
where t.typtype in ('b', 'e', 'c', 'd')`

func loadTypes(ctx context.Context, pool *pgxpool.Pool) ([]Type, error) {
	rows, err := pool.Query(ctx, typesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
