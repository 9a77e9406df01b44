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

package acl

import (
	"encoding/json"
	"fmt"
	"sort"
)

// GlobalPermissionSet is a value object mapping content types to held
// permission types. Two sets are equal iff they contain the same
// (content type, permission type) pairs, regardless of insertion order.
//
// It serializes as {"contentType": ["permissionType", ...]} with sorted
// permission lists.
type GlobalPermissionSet struct {
	grants map[ContentType]map[PermissionType]bool
}

// NewGlobalPermissionSet returns an empty set.
func NewGlobalPermissionSet() *GlobalPermissionSet {
	return &GlobalPermissionSet{grants: make(map[ContentType]map[PermissionType]bool)}
}

// Add records one (content type, permission type) pair. Adding an existing
// pair is a no-op.
func (s *GlobalPermissionSet) Add(ct ContentType, p PermissionType) *GlobalPermissionSet {
	types, exists := s.grants[ct]
	if !exists {
		types = make(map[PermissionType]bool)
		s.grants[ct] = types
	}
	types[p] = true
	return s
}

// Has reports whether the set holds the pair.
func (s *GlobalPermissionSet) Has(ct ContentType, p PermissionType) bool {
	return s.grants[ct][p]
}

// Get returns the sorted permission types held for a content type.
func (s *GlobalPermissionSet) Get(ct ContentType) []PermissionType {
	return sortedTypes(s.grants[ct])
}

// ContentTypes returns the sorted content types with at least one entry.
func (s *GlobalPermissionSet) ContentTypes() []ContentType {
	cts := make([]ContentType, 0, len(s.grants))
	for ct, types := range s.grants {
		if len(types) > 0 {
			cts = append(cts, ct)
		}
	}
	sort.Slice(cts, func(i, j int) bool { return cts[i] < cts[j] })
	return cts
}

// IsEmpty reports whether the set holds no pairs at all.
func (s *GlobalPermissionSet) IsEmpty() bool {
	for _, types := range s.grants {
		if len(types) > 0 {
			return false
		}
	}
	return true
}

// Equal reports pairwise equality with another set.
func (s *GlobalPermissionSet) Equal(other *GlobalPermissionSet) bool {
	if other == nil {
		return s == nil
	}
	cts := s.ContentTypes()
	octs := other.ContentTypes()
	if len(cts) != len(octs) {
		return false
	}
	for i, ct := range cts {
		if ct != octs[i] {
			return false
		}
		types := s.Get(ct)
		otypes := other.Get(ct)
		if len(types) != len(otypes) {
			return false
		}
		for j, p := range types {
			if p != otypes[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON renders the set as a content-type keyed object with sorted
// permission lists.
func (s *GlobalPermissionSet) MarshalJSON() ([]byte, error) {
	out := make(map[ContentType][]PermissionType, len(s.grants))
	for _, ct := range s.ContentTypes() {
		out[ct] = s.Get(ct)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the wire shape produced by MarshalJSON. Unknown
// content types or permission types are rejected.
func (s *GlobalPermissionSet) UnmarshalJSON(b []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.grants = make(map[ContentType]map[PermissionType]bool, len(raw))
	for ct, types := range raw {
		if !IsContentType(ct) {
			return fmt.Errorf("unknown content type '%s'", ct)
		}
		for _, p := range types {
			if !isPermissionType(p) {
				return fmt.Errorf("unknown permission type '%s'", p)
			}
			s.Add(ContentType(ct), PermissionType(p))
		}
	}
	return nil
}

func isPermissionType(name string) bool {
	for _, p := range PermissionTypes {
		if string(p) == name {
			return true
		}
	}
	return false
}

func sortedTypes(types map[PermissionType]bool) []PermissionType {
	out := make([]PermissionType, 0, len(types))
	for p := range types {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AccessorPermissions is one layer of an inherited global set: the direct
// content-type grants of a single accessor in the membership chain.
type AccessorPermissions struct {
	AccessorID  string
	Permissions *GlobalPermissionSet
}

// InheritedGlobalPermissionSet is the ordered stack of global permission
// sets visible to an accessor: the accessor's own set first, then one entry
// per direct group, in membership order. It always holds at least the
// accessor's own (possibly empty) entry.
//
// It serializes as a JSON array of single-key objects, nearest accessor
// first: [{"accessorId": {...}}, ...].
type InheritedGlobalPermissionSet struct {
	entries []AccessorPermissions
}

// Entries returns the ordered layers.
func (s *InheritedGlobalPermissionSet) Entries() []AccessorPermissions {
	return s.entries
}

// Has reports whether any layer holds the pair.
func (s *InheritedGlobalPermissionSet) Has(ct ContentType, p PermissionType) bool {
	for _, e := range s.entries {
		if e.Permissions.Has(ct, p) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the stack as a list of single-key objects.
func (s *InheritedGlobalPermissionSet) MarshalJSON() ([]byte, error) {
	out := make([]map[string]*GlobalPermissionSet, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, map[string]*GlobalPermissionSet{e.AccessorID: e.Permissions})
	}
	return json.Marshal(out)
}

// ItemPermissions is one layer of an inherited item set: the permission
// types one accessor in the chain contributes for a specific item.
type ItemPermissions struct {
	AccessorID  string
	Permissions []PermissionType
}

// InheritedItemPermissionSet is the resolved permission set for one
// (item, accessor) pair with provenance: each permission type appears
// against the nearest contributing accessor in the membership chain. The
// accessor's own (possibly empty) entry always comes first. Consumers read
// the merged decision directly and never re-walk scopes.
//
// It serializes as a JSON array of single-key objects, nearest accessor
// first: [{"accessorId": ["permissionType", ...]}, ...].
type InheritedItemPermissionSet struct {
	entries []ItemPermissions
}

// Entries returns the ordered layers.
func (s *InheritedItemPermissionSet) Entries() []ItemPermissions {
	return s.entries
}

// Has reports whether any layer contributes the permission type.
func (s *InheritedItemPermissionSet) Has(p PermissionType) bool {
	for _, e := range s.entries {
		for _, held := range e.Permissions {
			if held == p {
				return true
			}
		}
	}
	return false
}

// MarshalJSON renders the set as a list of single-key objects.
func (s *InheritedItemPermissionSet) MarshalJSON() ([]byte, error) {
	out := make([]map[string][]PermissionType, 0, len(s.entries))
	for _, e := range s.entries {
		types := e.Permissions
		if types == nil {
			types = []PermissionType{}
		}
		out = append(out, map[string][]PermissionType{e.AccessorID: types})
	}
	return json.Marshal(out)
}
