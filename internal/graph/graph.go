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

// Package graph defines the property-graph substrate consumed by the
// authorization engine: typed vertices, directed labeled edges, indexed
// lookup and a transactional mutation boundary. Concrete backends live in
// the inmemory, postgresql and mongodb subpackages.
package graph

// Vertex is a node in the catalog graph. Type carries the entity class
// (content type for manageable entities, or an infrastructure type such as
// PermissionGrant). Props holds the vertex's string properties.
type Vertex struct {
	ID    string            `json:"id"`
	Type  string            `json:"type"`
	Props map[string]string `json:"props,omitempty"`
}

// Prop returns the named property or "" when unset.
func (v *Vertex) Prop(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	return v.Props[key]
}

// Label classifies a directed edge.
type Label string

// Edge is a directed labeled edge between two vertices.
type Edge struct {
	ID    string `json:"id"`
	Label Label  `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Direction selects which incident edges of a vertex to iterate.
type Direction int

const (
	// Out iterates edges whose From end is the vertex.
	Out Direction = iota
	// In iterates edges whose To end is the vertex.
	In
)
