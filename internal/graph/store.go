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

package graph

import "context"

// Reader is the read side of the substrate. All methods are safe to call
// concurrently against a read-consistent snapshot of the graph.
type Reader interface {
	// Vertex returns the vertex with the given identifier, or an
	// ItemNotFound error when no such vertex exists.
	Vertex(ctx context.Context, id string) (*Vertex, error)

	// VerticesByProperty performs an indexed lookup of vertices carrying
	// the given property value. An empty vertexType matches any type.
	VerticesByProperty(ctx context.Context, key, value, vertexType string) ([]*Vertex, error)

	// Edges iterates the incident edges of a vertex in the given
	// direction. An empty label matches all labels. Edge order is
	// deterministic (insertion order) so that membership listings and
	// grant walks are stable across calls.
	Edges(ctx context.Context, vertexID string, dir Direction, label Label) ([]*Edge, error)
}

// Tx is the mutation surface available inside Store.Update. Reads through a
// Tx observe the transaction's own uncommitted writes.
type Tx interface {
	Reader

	// AddVertex creates a vertex. It fails if the identifier is taken.
	AddVertex(v *Vertex) error

	// SetProperty sets one property on an existing vertex.
	SetProperty(id, key, value string) error

	// RemoveVertex deletes a vertex and all its incident edges.
	RemoveVertex(id string) error

	// AddEdge creates a directed labeled edge between existing vertices
	// and returns it. Duplicate (label, from, to) triples are rejected by
	// the backend's uniqueness constraint.
	AddEdge(label Label, from, to string) (*Edge, error)

	// RemoveEdge deletes the edge with the given (label, from, to)
	// triple. Removing an absent edge is a no-op.
	RemoveEdge(label Label, from, to string) error
}

// Store is the full substrate contract: concurrent reads plus transactional
// mutation. Update runs fn inside a single transaction; every change made
// through the Tx commits together, or none do when fn returns an error.
type Store interface {
	Reader

	Update(ctx context.Context, fn func(tx Tx) error) error
}
