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

// Package graph_inmemory implements the graph substrate entirely in memory.
// It is the reference backend: transactions are serialized behind a single
// write lock, so every read observes a fully committed graph.
package graph_inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

var (
	// ErrVertexAlreadyExists is returned when adding a vertex whose
	// identifier is taken.
	ErrVertexAlreadyExists = errors.New("vertex already exists")
	// ErrEdgeAlreadyExists is returned when adding a duplicate
	// (label, from, to) edge.
	ErrEdgeAlreadyExists = errors.New("edge already exists")
)

// InMemoryGraphDatabase holds the whole graph in process memory. Commits
// swap the vertex map and edge slice wholesale, so a failed transaction
// leaves no partial writes behind.
type InMemoryGraphDatabase struct {
	mu       sync.RWMutex
	vertices map[string]*graph.Vertex
	edges    []*graph.Edge
}

// NewInMemoryGraphDatabase creates an empty in-memory graph database.
func NewInMemoryGraphDatabase() (*InMemoryGraphDatabase, error) {
	return &InMemoryGraphDatabase{
		vertices: make(map[string]*graph.Vertex),
	}, nil
}

// Vertex returns the vertex with the given identifier.
func (s *InMemoryGraphDatabase) Vertex(_ context.Context, id string) (*graph.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vertexFrom(s.vertices, id)
}

// VerticesByProperty returns all vertices carrying the given property value,
// optionally restricted to one vertex type, ordered by identifier.
func (s *InMemoryGraphDatabase) VerticesByProperty(_ context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return verticesByPropertyFrom(s.vertices, key, value, vertexType), nil
}

// Edges returns the incident edges of a vertex in insertion order.
func (s *InMemoryGraphDatabase) Edges(_ context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return edgesFrom(s.edges, vertexID, dir, label), nil
}

// Update runs fn inside a transaction. The transaction stages its writes on
// copies of the store's state; the store only adopts them when fn returns
// nil.
func (s *InMemoryGraphDatabase) Update(_ context.Context, fn func(tx graph.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		vertices: make(map[string]*graph.Vertex, len(s.vertices)),
		edges:    make([]*graph.Edge, len(s.edges)),
	}
	for id, v := range s.vertices {
		tx.vertices[id] = v
	}
	copy(tx.edges, s.edges)

	if err := fn(tx); err != nil {
		return err
	}

	s.vertices = tx.vertices
	s.edges = tx.edges
	return nil
}

// memTx stages mutations on private copies of the vertex map and edge
// slice. Shared *Vertex values are cloned before the first write so a
// rolled-back transaction never leaks changes into committed state.
type memTx struct {
	vertices map[string]*graph.Vertex
	edges    []*graph.Edge
}

func (t *memTx) Vertex(_ context.Context, id string) (*graph.Vertex, error) {
	return vertexFrom(t.vertices, id)
}

func (t *memTx) VerticesByProperty(_ context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	return verticesByPropertyFrom(t.vertices, key, value, vertexType), nil
}

func (t *memTx) Edges(_ context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	return edgesFrom(t.edges, vertexID, dir, label), nil
}

func (t *memTx) AddVertex(v *graph.Vertex) error {
	if _, exists := t.vertices[v.ID]; exists {
		return ErrVertexAlreadyExists
	}
	t.vertices[v.ID] = cloneVertex(v)
	return nil
}

func (t *memTx) SetProperty(id, key, value string) error {
	v, err := vertexFrom(t.vertices, id)
	if err != nil {
		return err
	}
	clone := cloneVertex(v)
	clone.Props[key] = value
	t.vertices[id] = clone
	return nil
}

func (t *memTx) RemoveVertex(id string) error {
	if _, exists := t.vertices[id]; !exists {
		return common.NewErrNotFound(id)
	}
	delete(t.vertices, id)

	kept := t.edges[:0:0]
	for _, e := range t.edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	t.edges = kept
	return nil
}

func (t *memTx) AddEdge(label graph.Label, from, to string) (*graph.Edge, error) {
	if _, exists := t.vertices[from]; !exists {
		return nil, common.NewErrNotFound(from)
	}
	if _, exists := t.vertices[to]; !exists {
		return nil, common.NewErrNotFound(to)
	}
	for _, e := range t.edges {
		if e.Label == label && e.From == from && e.To == to {
			return nil, ErrEdgeAlreadyExists
		}
	}
	edge := &graph.Edge{
		ID:    uuid.NewString(),
		Label: label,
		From:  from,
		To:    to,
	}
	t.edges = append(t.edges, edge)
	return edge, nil
}

func (t *memTx) RemoveEdge(label graph.Label, from, to string) error {
	for i, e := range t.edges {
		if e.Label == label && e.From == from && e.To == to {
			t.edges = append(t.edges[:i:i], t.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func vertexFrom(vertices map[string]*graph.Vertex, id string) (*graph.Vertex, error) {
	v, exists := vertices[id]
	if !exists {
		return nil, common.NewErrNotFound(id)
	}
	return v, nil
}

func verticesByPropertyFrom(vertices map[string]*graph.Vertex, key, value, vertexType string) []*graph.Vertex {
	matches := make([]*graph.Vertex, 0)
	for _, v := range vertices {
		if vertexType != "" && v.Type != vertexType {
			continue
		}
		if v.Prop(key) == value {
			matches = append(matches, v)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func edgesFrom(edges []*graph.Edge, vertexID string, dir graph.Direction, label graph.Label) []*graph.Edge {
	matches := make([]*graph.Edge, 0)
	for _, e := range edges {
		if label != "" && e.Label != label {
			continue
		}
		if (dir == graph.Out && e.From == vertexID) || (dir == graph.In && e.To == vertexID) {
			matches = append(matches, e)
		}
	}
	return matches
}

func cloneVertex(v *graph.Vertex) *graph.Vertex {
	props := make(map[string]string, len(v.Props))
	for k, val := range v.Props {
		props[k] = val
	}
	return &graph.Vertex{ID: v.ID, Type: v.Type, Props: props}
}
