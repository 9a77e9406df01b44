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

// This file implements the mutation half of the AclManager. Grants and
// visibility lists are written exclusively through these methods; each
// method applies one logical mutation inside a single store transaction.
// None of them checks the caller's permissions — that is the caller's job
// through the enforcement wrappers.
package acl

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

// GrantPermission grants one permission type over a target (item vertex or
// content-type vertex) to an accessor at the manager's scope. Granting an
// already-held triple is idempotent: the existing grant is returned and no
// duplicate is created, which re-import pipelines rely on.
func (m *AclManager) GrantPermission(ctx context.Context, targetID string, p PermissionType, accessor Accessor) (*Grant, error) {
	mustBeIdentified(accessor)
	if !isPermissionType(string(p)) {
		return nil, fmt.Errorf("unknown permission type '%s'", p)
	}
	scopeID := currentScopeID(m.scope)

	var out *Grant
	err := m.store.Update(ctx, func(tx graph.Tx) error {
		if _, err := tx.Vertex(ctx, accessor.ID()); err != nil {
			return err
		}
		if _, err := tx.Vertex(ctx, targetID); err != nil {
			return err
		}
		existing, err := findGrant(ctx, tx, accessor.ID(), p, targetID, scopeID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		out, err = createGrant(ctx, tx, accessor.ID(), p, targetID, scopeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RevokePermission removes the grant matching (accessor, permission, target)
// at the manager's scope. The whole grant is removed, not one property.
// Revoking an absent grant is a no-op.
func (m *AclManager) RevokePermission(ctx context.Context, targetID string, p PermissionType, accessor Accessor) error {
	if accessor.IsAnonymous() {
		return nil
	}
	scopeID := currentScopeID(m.scope)
	return m.store.Update(ctx, func(tx graph.Tx) error {
		existing, err := findGrant(ctx, tx, accessor.ID(), p, targetID, scopeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		return tx.RemoveVertex(existing.ID)
	})
}

// RevokePermissionGrant deletes the grant vertex and its edges entirely,
// independent of how the grant was looked up. Deleting an already-deleted
// grant is a no-op.
func (m *AclManager) RevokePermissionGrant(ctx context.Context, grant *Grant) error {
	return m.store.Update(ctx, func(tx graph.Tx) error {
		if err := tx.RemoveVertex(grant.ID); err != nil && !common.IsErrNotFound(err) {
			return err
		}
		return nil
	})
}

// SetPermissionMatrix replaces the accessor's entire direct content-type
// grant set at the manager's scope with the supplied set: grants for content
// types absent from the new set are removed, the rest added. The admin
// group's matrix is implicit and not settable; targeting it (or any
// transitive member of it) fails with PermissionDenied.
func (m *AclManager) SetPermissionMatrix(ctx context.Context, accessor Accessor, set *GlobalPermissionSet) error {
	mustBeIdentified(accessor)
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return err
	}
	if admin {
		return common.NewPermissionDenied(accessor.ID(), AdminGroupID, string(PermissionGrant), m.scope.ID())
	}
	scopeID := currentScopeID(m.scope)

	return m.store.Update(ctx, func(tx graph.Tx) error {
		if _, err := tx.Vertex(ctx, accessor.ID()); err != nil {
			return err
		}
		existing, err := grantsOf(ctx, tx, accessor.ID())
		if err != nil {
			return err
		}

		covered := make(map[ContentType]map[PermissionType]bool)
		for _, g := range existing {
			if g.ScopeID != scopeID || !isContentTypeGrant(g) {
				continue
			}
			ct := ContentType(g.TargetIDs[0])
			if len(g.TargetIDs) == 1 && set.Has(ct, g.Permission) {
				if covered[ct] == nil {
					covered[ct] = make(map[PermissionType]bool)
				}
				covered[ct][g.Permission] = true
				continue
			}
			if err := tx.RemoveVertex(g.ID); err != nil {
				return err
			}
		}

		for _, ct := range set.ContentTypes() {
			for _, p := range set.Get(ct) {
				if covered[ct][p] {
					continue
				}
				if _, err := createGrant(ctx, tx, accessor.ID(), p, string(ct), scopeID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SetItemPermissions grants exactly the given permission types on one item
// to the accessor, revoking item-level grants of types not in the new set.
// Only grants targeting this item are touched.
func (m *AclManager) SetItemPermissions(ctx context.Context, itemID string, accessor Accessor, types []PermissionType) error {
	mustBeIdentified(accessor)
	desired := make(map[PermissionType]bool, len(types))
	for _, p := range types {
		if !isPermissionType(string(p)) {
			return fmt.Errorf("unknown permission type '%s'", p)
		}
		desired[p] = true
	}
	scopeID := currentScopeID(m.scope)

	return m.store.Update(ctx, func(tx graph.Tx) error {
		if _, err := tx.Vertex(ctx, itemID); err != nil {
			return err
		}
		if _, err := tx.Vertex(ctx, accessor.ID()); err != nil {
			return err
		}
		existing, err := grantsOf(ctx, tx, accessor.ID())
		if err != nil {
			return err
		}
		covered := make(map[PermissionType]bool)
		for _, g := range existing {
			if !g.hasTarget(itemID) {
				continue
			}
			if len(g.TargetIDs) == 1 && desired[g.Permission] && !covered[g.Permission] {
				covered[g.Permission] = true
				continue
			}
			if err := tx.RemoveVertex(g.ID); err != nil {
				return err
			}
		}
		for _, p := range sortedSlice(types) {
			if covered[p] {
				continue
			}
			if _, err := createGrant(ctx, tx, accessor.ID(), p, itemID, scopeID); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetAccessors atomically replaces the item's visibility list with exactly
// the given accessors: edges to unlisted accessors are removed, edges to new
// ones added. No permission check happens here; callers check UPDATE first.
func (m *AclManager) SetAccessors(ctx context.Context, itemID string, accessors []Accessor) error {
	desired := make(map[string]bool, len(accessors))
	for _, a := range accessors {
		mustBeIdentified(a)
		desired[a.ID()] = true
	}
	return m.store.Update(ctx, func(tx graph.Tx) error {
		if _, err := tx.Vertex(ctx, itemID); err != nil {
			return err
		}
		edges, err := tx.Edges(ctx, itemID, graph.Out, EdgeAccess)
		if err != nil {
			return err
		}
		listed := make(map[string]bool, len(edges))
		for _, e := range edges {
			if !desired[e.To] {
				if err := tx.RemoveEdge(EdgeAccess, itemID, e.To); err != nil {
					return err
				}
				continue
			}
			listed[e.To] = true
		}
		for _, a := range accessors {
			if listed[a.ID()] {
				continue
			}
			if _, err := tx.AddEdge(EdgeAccess, itemID, a.ID()); err != nil {
				return err
			}
			listed[a.ID()] = true
		}
		return nil
	})
}

// RemoveAccessControl removes one accessor from the item's visibility list;
// a no-op when the accessor is not listed. Removing the last entry restores
// global visibility.
func (m *AclManager) RemoveAccessControl(ctx context.Context, itemID string, accessor Accessor) error {
	if accessor.IsAnonymous() {
		return nil
	}
	return m.store.Update(ctx, func(tx graph.Tx) error {
		return tx.RemoveEdge(EdgeAccess, itemID, accessor.ID())
	})
}

// findGrant locates the accessor's grant matching (permission, target,
// scope), or nil.
func findGrant(ctx context.Context, r graph.Reader, accessorID string, p PermissionType, targetID, scopeID string) (*Grant, error) {
	grants, err := grantsOf(ctx, r, accessorID)
	if err != nil {
		return nil, err
	}
	for _, g := range grants {
		if g.Permission == p && g.ScopeID == scopeID && g.hasTarget(targetID) {
			return g, nil
		}
	}
	return nil, nil
}

// createGrant writes a new grant vertex and its edge-set.
func createGrant(ctx context.Context, tx graph.Tx, accessorID string, p PermissionType, targetID, scopeID string) (*Grant, error) {
	v := &graph.Vertex{
		ID:    uuid.NewString(),
		Type:  TypePermissionGrant,
		Props: map[string]string{PropPermission: string(p)},
	}
	if err := tx.AddVertex(v); err != nil {
		return nil, err
	}
	if _, err := tx.AddEdge(EdgeHasGrant, accessorID, v.ID); err != nil {
		return nil, err
	}
	if _, err := tx.AddEdge(EdgeHasTarget, v.ID, targetID); err != nil {
		return nil, err
	}
	if scopeID != systemScopeID {
		if _, err := tx.AddEdge(EdgeHasScope, v.ID, scopeID); err != nil {
			return nil, err
		}
	}
	return &Grant{
		ID:         v.ID,
		AccessorID: accessorID,
		Permission: p,
		TargetIDs:  []string{targetID},
		ScopeID:    scopeID,
	}, nil
}

// isContentTypeGrant reports whether every target of the grant is a
// content-type vertex.
func isContentTypeGrant(g *Grant) bool {
	if len(g.TargetIDs) == 0 {
		return false
	}
	for _, t := range g.TargetIDs {
		if !IsContentType(t) {
			return false
		}
	}
	return true
}

// mustBeIdentified panics when asked to mutate permission state for the
// anonymous sentinel: it represents "no identity", not a storage-backed
// node, so this is a programmer error rather than a recoverable condition.
func mustBeIdentified(accessor Accessor) {
	if accessor.IsAnonymous() {
		panic("acl: cannot mutate permission state for the anonymous accessor")
	}
}
