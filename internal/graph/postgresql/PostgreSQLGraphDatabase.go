/*******************************************************************************
* Copyright (C) 2026 the ArchiveGraph Authors
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package graph_postgresql implements the graph substrate on PostgreSQL:
// one vertex table with JSONB properties and one edge table with a
// (label, from, to) uniqueness constraint. The constraint gives concurrent
// duplicate grant writes conflict detection at the database level.
package graph_postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS vertex (
	id TEXT PRIMARY KEY,
	vertex_type TEXT NOT NULL,
	props JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_vertex_type ON vertex (vertex_type);
CREATE INDEX IF NOT EXISTS idx_vertex_props ON vertex USING GIN (props);

CREATE TABLE IF NOT EXISTS edge (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	from_id TEXT NOT NULL REFERENCES vertex(id) ON DELETE CASCADE,
	to_id TEXT NOT NULL REFERENCES vertex(id) ON DELETE CASCADE,
	seq BIGSERIAL,
	CONSTRAINT edge_unique UNIQUE (label, from_id, to_id)
);
CREATE INDEX IF NOT EXISTS idx_edge_from ON edge (from_id, label);
CREATE INDEX IF NOT EXISTS idx_edge_to ON edge (to_id, label);
`

// ErrEdgeAlreadyExists is returned when adding a duplicate (label, from, to)
// edge.
var ErrEdgeAlreadyExists = errors.New("edge already exists")

// queryer abstracts *sql.DB and *sql.Tx for read operations. Both implement
// these methods.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var dialect = goqu.Dialect("postgres")

// PostgreSQLGraphDatabase is the graph substrate backed by PostgreSQL.
type PostgreSQLGraphDatabase struct {
	db *sql.DB
}

// NewPostgreSQLGraphDatabase connects to PostgreSQL, applies the graph
// schema and returns the store. Pool parameters <= 0 keep the driver
// defaults.
func NewPostgreSQLGraphDatabase(dsn string, maxOpenConnections, maxIdleConnections, connMaxLifetimeMinutes int) (*PostgreSQLGraphDatabase, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpenConnections > 0 {
		db.SetMaxOpenConns(maxOpenConnections)
	}
	if maxIdleConnections > 0 {
		db.SetMaxIdleConns(maxIdleConnections)
	}
	if connMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(connMaxLifetimeMinutes) * time.Minute)
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply graph schema: %w", err)
	}
	return &PostgreSQLGraphDatabase{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgreSQLGraphDatabase) Close() error { return s.db.Close() }

func (s *PostgreSQLGraphDatabase) Vertex(ctx context.Context, id string) (*graph.Vertex, error) {
	return selectVertex(ctx, s.db, id)
}

func (s *PostgreSQLGraphDatabase) VerticesByProperty(ctx context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	return selectVerticesByProperty(ctx, s.db, key, value, vertexType)
}

func (s *PostgreSQLGraphDatabase) Edges(ctx context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	return selectEdges(ctx, s.db, vertexID, dir, label)
}

// Update runs fn inside one database transaction at read-committed
// isolation. The engine's logical mutations commit together or roll back
// together.
func (s *PostgreSQLGraphDatabase) Update(ctx context.Context, fn func(tx graph.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// pgTx adapts one *sql.Tx to the substrate's Tx contract.
type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Vertex(ctx context.Context, id string) (*graph.Vertex, error) {
	return selectVertex(ctx, t.tx, id)
}

func (t *pgTx) VerticesByProperty(ctx context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	return selectVerticesByProperty(ctx, t.tx, key, value, vertexType)
}

func (t *pgTx) Edges(ctx context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	return selectEdges(ctx, t.tx, vertexID, dir, label)
}

func (t *pgTx) AddVertex(v *graph.Vertex) error {
	props, err := json.Marshal(propsOrEmpty(v.Props))
	if err != nil {
		return err
	}
	query, args, err := dialect.Insert("vertex").
		Cols("id", "vertex_type", "props").
		Vals(goqu.Vals{v.ID, v.Type, string(props)}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("vertex '%s' already exists", v.ID)
		}
		return err
	}
	return nil
}

func (t *pgTx) SetProperty(id, key, value string) error {
	res, err := t.tx.Exec(
		`UPDATE vertex SET props = jsonb_set(props, ARRAY[$2], to_jsonb($3::text)) WHERE id = $1`,
		id, key, value,
	)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (t *pgTx) RemoveVertex(id string) error {
	// Incident edges go with the vertex via ON DELETE CASCADE.
	query, args, err := dialect.Delete("vertex").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	res, err := t.tx.Exec(query, args...)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (t *pgTx) AddEdge(label graph.Label, from, to string) (*graph.Edge, error) {
	edge := &graph.Edge{ID: uuid.NewString(), Label: label, From: from, To: to}
	query, args, err := dialect.Insert("edge").
		Cols("id", "label", "from_id", "to_id").
		Vals(goqu.Vals{edge.ID, string(label), from, to}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.Exec(query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEdgeAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return nil, common.NewErrNotFound(from + "/" + to)
		}
		return nil, err
	}
	return edge, nil
}

func (t *pgTx) RemoveEdge(label graph.Label, from, to string) error {
	query, args, err := dialect.Delete("edge").
		Where(goqu.Ex{"label": string(label), "from_id": from, "to_id": to}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(query, args...)
	return err
}

func selectVertex(ctx context.Context, q queryer, id string) (*graph.Vertex, error) {
	query, args, err := dialect.From("vertex").
		Select("id", "vertex_type", "props").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var v graph.Vertex
	var props []byte
	if err := q.QueryRowContext(ctx, query, args...).Scan(&v.ID, &v.Type, &props); err != nil {
		if err == sql.ErrNoRows {
			return nil, common.NewErrNotFound(id)
		}
		return nil, err
	}
	if err := json.Unmarshal(props, &v.Props); err != nil {
		return nil, err
	}
	return &v, nil
}

func selectVerticesByProperty(ctx context.Context, q queryer, key, value, vertexType string) ([]*graph.Vertex, error) {
	ds := dialect.From("vertex").
		Select("id", "vertex_type", "props").
		Where(goqu.L("props ->> ?", key).Eq(value)).
		Order(goqu.C("id").Asc())
	if vertexType != "" {
		ds = ds.Where(goqu.Ex{"vertex_type": vertexType})
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	vertices := make([]*graph.Vertex, 0)
	for rows.Next() {
		var v graph.Vertex
		var props []byte
		if err := rows.Scan(&v.ID, &v.Type, &props); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(props, &v.Props); err != nil {
			return nil, err
		}
		vertices = append(vertices, &v)
	}
	return vertices, rows.Err()
}

func selectEdges(ctx context.Context, q queryer, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	endpoint := "from_id"
	if dir == graph.In {
		endpoint = "to_id"
	}
	ds := dialect.From("edge").
		Select("id", "label", "from_id", "to_id").
		Where(goqu.Ex{endpoint: vertexID}).
		Order(goqu.C("seq").Asc())
	if label != "" {
		ds = ds.Where(goqu.Ex{"label": string(label)})
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	edges := make([]*graph.Edge, 0)
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.ID, &e.Label, &e.From, &e.To); err != nil {
			return nil, err
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

func propsOrEmpty(props map[string]string) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	return props
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
