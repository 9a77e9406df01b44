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

// This file implements the resolution half of the AclManager: admin and
// anonymous handling, visibility checks, the scoped hasPermission walk, and
// the permission-set queries. All methods here are read-only and safe to
// call concurrently against a read-consistent graph snapshot; denial is a
// false/empty return, never an error.
package acl

import (
	"context"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

// systemScopeID is the internal scope identifier of the system scope: a
// grant without a hasScope edge.
const systemScopeID = ""

// AclManager is the permission resolution and mutation engine. It holds no
// locks and no cross-call caches; every decision is computed against the
// store's current snapshot. A manager is cheap to copy; WithScope returns a
// scoped view sharing the same store.
type AclManager struct {
	store graph.Store
	scope PermissionScope
}

// NewAclManager creates a manager resolving at the system scope.
func NewAclManager(store graph.Store) *AclManager {
	return &AclManager{store: store, scope: SystemScope}
}

// WithScope returns a manager resolving within the given scope. Grants found
// at a closer scope always win over farther ones.
func (m *AclManager) WithScope(scope PermissionScope) *AclManager {
	if scope == nil {
		scope = SystemScope
	}
	return &AclManager{store: m.store, scope: scope}
}

// Scope returns the manager's resolution scope.
func (m *AclManager) Scope() PermissionScope { return m.scope }

// IsAnonymous reports whether the accessor is the anonymous sentinel.
func (m *AclManager) IsAnonymous(accessor Accessor) bool {
	return accessor.IsAnonymous()
}

// BelongsToAdmin reports whether the accessor is the admin group or
// transitively belongs to it. The walk is bounded by a visited set, so a
// cyclic membership graph terminates instead of looping.
func (m *AclManager) BelongsToAdmin(ctx context.Context, accessor Accessor) (bool, error) {
	if accessor.IsAnonymous() {
		return false, nil
	}
	if accessor.ID() == AdminGroupID {
		return true, nil
	}
	chain, err := m.accessorChain(ctx, m.store, accessor)
	if err != nil {
		return false, err
	}
	for _, id := range chain {
		if id == AdminGroupID {
			return true, nil
		}
	}
	return false, nil
}

// CanAccess reports whether the accessor may read the item. Admins always
// may; otherwise the item must have an empty visibility list, or the
// accessor (or one of its transitive groups) must appear on it.
func (m *AclManager) CanAccess(ctx context.Context, itemID string, accessor Accessor) (bool, error) {
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	chain, err := m.accessorChain(ctx, m.store, accessor)
	if err != nil {
		return false, err
	}
	return canAccessWithChain(ctx, m.store, itemID, toSet(chain))
}

// GetAclFilterFunction returns a predicate implementing CanAccess against a
// fixed accessor. The admin flag and transitive group set are resolved once
// here; the predicate performs a single visibility read per item and is safe
// to reuse across an entire listing operation. A graph read failure inside
// the predicate denies.
func (m *AclManager) GetAclFilterFunction(ctx context.Context, accessor Accessor) (func(item *graph.Vertex) bool, error) {
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return nil, err
	}
	if admin {
		return func(*graph.Vertex) bool { return true }, nil
	}
	chain, err := m.accessorChain(ctx, m.store, accessor)
	if err != nil {
		return nil, err
	}
	chainSet := toSet(chain)
	return func(item *graph.Vertex) bool {
		if item == nil {
			return false
		}
		ok, err := canAccessWithChain(ctx, m.store, item.ID, chainSet)
		return err == nil && ok
	}, nil
}

// GetContentTypeFilterFunction returns a predicate that keeps only vertices
// whose declared type is a registered content type, stripping infrastructure
// vertices out of generic traversals before they are treated as permission
// targets.
func (m *AclManager) GetContentTypeFilterFunction() func(v *graph.Vertex) bool {
	return func(v *graph.Vertex) bool {
		return v != nil && IsContentType(v.Type)
	}
}

// HasContentTypePermission reports whether the accessor holds the permission
// type over the whole content type, resolved at the manager's scope: the
// scope ancestry is walked outward from the current scope to the system
// scope, and the first matching grant (accessor or transitive group) wins.
func (m *AclManager) HasContentTypePermission(ctx context.Context, ct ContentType, p PermissionType, accessor Accessor) (bool, error) {
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	grants, err := m.chainGrants(ctx, m.store, accessor)
	if err != nil {
		return false, err
	}
	scopeIDs := append(m.scope.IDPath(), systemScopeID)
	return matchContentTypeGrant(grants, ct, p, scopeIDs), nil
}

// HasItemPermission reports whether the accessor holds the permission type
// over one specific item. Resolution order, first match wins: admin; a
// direct grant for the item at the current scope (accessor or transitive
// group); the owner auto-grant; then content-type grants along the scope
// ancestry. A missing item denies rather than erroring.
func (m *AclManager) HasItemPermission(ctx context.Context, itemID string, p PermissionType, accessor Accessor) (bool, error) {
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}

	item, err := m.store.Vertex(ctx, itemID)
	if err != nil {
		if common.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}

	grants, err := m.chainGrants(ctx, m.store, accessor)
	if err != nil {
		return false, err
	}

	// Direct grant for this item at the current scope.
	currentScope := currentScopeID(m.scope)
	for _, ag := range grants {
		for _, g := range ag.grants {
			if g.Permission == p && g.hasTarget(itemID) && g.ScopeID == currentScope {
				return true, nil
			}
		}
	}

	// The item's creator holds an owner grant naming them directly; it
	// applies at any scope, implies update and delete, and covers only
	// the recorded accessor itself, never groups.
	if len(grants) > 0 && (p == PermissionOwner || p == PermissionUpdate || p == PermissionDelete) {
		for _, g := range grants[0].grants {
			if g.Permission == PermissionOwner && g.hasTarget(itemID) {
				return true, nil
			}
		}
	}

	if !IsContentType(item.Type) {
		return false, nil
	}
	scopeIDs, err := m.itemScopeChain(ctx, item)
	if err != nil {
		return false, err
	}
	return matchContentTypeGrant(grants, ContentType(item.Type), p, scopeIDs), nil
}

// GetGlobalPermissions returns the accessor's own direct, system-scoped
// content-type grants: no group expansion and no scope walk. It is the base
// layer of the inherited global set.
func (m *AclManager) GetGlobalPermissions(ctx context.Context, accessor Accessor) (*GlobalPermissionSet, error) {
	grants, err := grantsOf(ctx, m.store, accessor.ID())
	if err != nil {
		return nil, err
	}
	return globalSetFromGrants(grants), nil
}

// GetInheritedGlobalPermissions returns the ordered stack of global sets for
// an accessor: its own set first, then one non-expanded set per direct
// group, in membership order.
func (m *AclManager) GetInheritedGlobalPermissions(ctx context.Context, accessor Accessor) (*InheritedGlobalPermissionSet, error) {
	own, err := m.GetGlobalPermissions(ctx, accessor)
	if err != nil {
		return nil, err
	}
	entries := []AccessorPermissions{{AccessorID: accessor.ID(), Permissions: own}}

	groupIDs, err := directGroups(ctx, m.store, accessor.ID())
	if err != nil {
		return nil, err
	}
	for _, gid := range groupIDs {
		grants, err := grantsOf(ctx, m.store, gid)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AccessorPermissions{AccessorID: gid, Permissions: globalSetFromGrants(grants)})
	}
	return &InheritedGlobalPermissionSet{entries: entries}, nil
}

// GetInheritedItemPermissions resolves the permission types held over one
// item per accessor in the membership chain (self first), merged so each
// permission type appears against the nearest contributing accessor. Admins
// get the full permission registry against their own entry.
func (m *AclManager) GetInheritedItemPermissions(ctx context.Context, itemID string, accessor Accessor) (*InheritedItemPermissionSet, error) {
	admin, err := m.BelongsToAdmin(ctx, accessor)
	if err != nil {
		return nil, err
	}
	if admin {
		all := make([]PermissionType, len(PermissionTypes))
		copy(all, PermissionTypes)
		return &InheritedItemPermissionSet{entries: []ItemPermissions{
			{AccessorID: accessor.ID(), Permissions: sortedSlice(all)},
		}}, nil
	}

	item, err := m.store.Vertex(ctx, itemID)
	if err != nil {
		if common.IsErrNotFound(err) {
			return &InheritedItemPermissionSet{entries: []ItemPermissions{
				{AccessorID: accessor.ID()},
			}}, nil
		}
		return nil, err
	}

	grants, err := m.chainGrants(ctx, m.store, accessor)
	if err != nil {
		return nil, err
	}
	currentScope := currentScopeID(m.scope)
	var scopeIDs []string
	if IsContentType(item.Type) {
		scopeIDs, err = m.itemScopeChain(ctx, item)
		if err != nil {
			return nil, err
		}
	}

	claimed := make(map[PermissionType]bool)
	entries := make([]ItemPermissions, 0, len(grants))
	for i, ag := range grants {
		var held []PermissionType
		for _, g := range ag.grants {
			switch {
			case g.hasTarget(itemID) && g.ScopeID == currentScope:
				// direct item grant
			case i == 0 && g.Permission == PermissionOwner && g.hasTarget(itemID):
				// owner auto-grant, any scope, self only
			case scopeIDs != nil && g.hasTarget(string(item.Type)) && containsString(scopeIDs, g.ScopeID):
				// content-type grant along the scope ancestry
			default:
				continue
			}
			if !claimed[g.Permission] {
				claimed[g.Permission] = true
				held = append(held, g.Permission)
			}
		}
		if i == 0 || len(held) > 0 {
			entries = append(entries, ItemPermissions{AccessorID: ag.accessorID, Permissions: sortedSlice(held)})
		}
	}
	return &InheritedItemPermissionSet{entries: entries}, nil
}

// FindPermissionGrants returns the accessor's own direct grants, for
// provenance listings.
func (m *AclManager) FindPermissionGrants(ctx context.Context, accessor Accessor) ([]*Grant, error) {
	return grantsOf(ctx, m.store, accessor.ID())
}

// ScopeByID loads a vertex-backed permission scope, resolving its ancestor
// path eagerly by walking parentScope edges. The walk is visited-set bounded.
func (m *AclManager) ScopeByID(ctx context.Context, id string) (*GraphScope, error) {
	if _, err := m.store.Vertex(ctx, id); err != nil {
		return nil, err
	}
	path, err := scopeAncestry(ctx, m.store, id, true)
	if err != nil {
		return nil, err
	}
	return &GraphScope{id: id, path: path}, nil
}

// accessorGrants pairs one accessor in a membership chain with its direct
// grants.
type accessorGrants struct {
	accessorID string
	grants     []*Grant
}

// chainGrants resolves the accessor's transitive membership chain (self
// first, then groups in breadth-first membership order, cycle-safe) and
// loads each member's direct grants once.
func (m *AclManager) chainGrants(ctx context.Context, r graph.Reader, accessor Accessor) ([]accessorGrants, error) {
	chain, err := m.accessorChain(ctx, r, accessor)
	if err != nil {
		return nil, err
	}
	out := make([]accessorGrants, 0, len(chain))
	for _, id := range chain {
		grants, err := grantsOf(ctx, r, id)
		if err != nil {
			return nil, err
		}
		out = append(out, accessorGrants{accessorID: id, grants: grants})
	}
	return out, nil
}

// accessorChain returns the accessor's identifier followed by every group it
// transitively belongs to, breadth-first in membership order. Already
// visited groups are ignored, so a cyclic membership graph terminates.
func (m *AclManager) accessorChain(ctx context.Context, r graph.Reader, accessor Accessor) ([]string, error) {
	chain := []string{accessor.ID()}
	if accessor.IsAnonymous() {
		return chain, nil
	}
	visited := map[string]bool{accessor.ID(): true}
	queue := []string{accessor.ID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		groupIDs, err := directGroups(ctx, r, id)
		if err != nil {
			return nil, err
		}
		for _, gid := range groupIDs {
			if visited[gid] {
				continue
			}
			visited[gid] = true
			chain = append(chain, gid)
			queue = append(queue, gid)
		}
	}
	return chain, nil
}

// itemScopeChain returns the scope identifiers to walk for content-type
// grants against an item: the fixed resolution scope's ancestry when one was
// set via WithScope, otherwise the item's own scope ancestry, always ending
// at the system scope.
func (m *AclManager) itemScopeChain(ctx context.Context, item *graph.Vertex) ([]string, error) {
	if _, fixed := m.scope.(*GraphScope); fixed {
		return append(m.scope.IDPath(), systemScopeID), nil
	}
	ancestors, err := scopeAncestry(ctx, m.store, item.ID, false)
	if err != nil {
		return nil, err
	}
	return append(ancestors, systemScopeID), nil
}

// directGroups returns the groups a vertex directly belongs to, in edge
// insertion order.
func directGroups(ctx context.Context, r graph.Reader, id string) ([]string, error) {
	edges, err := r.Edges(ctx, id, graph.Out, EdgeBelongsTo)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.To)
	}
	return out, nil
}

// grantsOf loads the direct grants of one accessor: each hasGrant edge leads
// to a grant vertex whose permission property and hasTarget/hasScope/
// hasGrantee edges form one Grant value.
func grantsOf(ctx context.Context, r graph.Reader, accessorID string) ([]*Grant, error) {
	edges, err := r.Edges(ctx, accessorID, graph.Out, EdgeHasGrant)
	if err != nil {
		return nil, err
	}
	grants := make([]*Grant, 0, len(edges))
	for _, e := range edges {
		v, err := r.Vertex(ctx, e.To)
		if err != nil {
			if common.IsErrNotFound(err) {
				continue
			}
			return nil, err
		}
		g := &Grant{
			ID:         v.ID,
			AccessorID: accessorID,
			Permission: PermissionType(v.Prop(PropPermission)),
		}
		targets, err := r.Edges(ctx, v.ID, graph.Out, EdgeHasTarget)
		if err != nil {
			return nil, err
		}
		for _, te := range targets {
			g.TargetIDs = append(g.TargetIDs, te.To)
		}
		scopes, err := r.Edges(ctx, v.ID, graph.Out, EdgeHasScope)
		if err != nil {
			return nil, err
		}
		if len(scopes) > 0 {
			g.ScopeID = scopes[0].To
		}
		grantees, err := r.Edges(ctx, v.ID, graph.Out, EdgeHasGrantee)
		if err != nil {
			return nil, err
		}
		if len(grantees) > 0 {
			g.GranteeID = grantees[0].To
		}
		grants = append(grants, g)
	}
	return grants, nil
}

// scopeAncestry walks parentScope edges outward from a vertex. includeSelf
// controls whether the starting vertex leads the returned path.
func scopeAncestry(ctx context.Context, r graph.Reader, id string, includeSelf bool) ([]string, error) {
	var path []string
	if includeSelf {
		path = append(path, id)
	}
	visited := map[string]bool{id: true}
	current := id
	for {
		edges, err := r.Edges(ctx, current, graph.Out, EdgeParentScope)
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			return path, nil
		}
		parent := edges[0].To
		if visited[parent] {
			return path, nil
		}
		visited[parent] = true
		path = append(path, parent)
		current = parent
	}
}

// matchContentTypeGrant scans scope identifiers in nearest-first order and
// reports whether any chain member holds a matching content-type grant at
// one of them. Scanning scope-major realizes "closest scope wins".
func matchContentTypeGrant(grants []accessorGrants, ct ContentType, p PermissionType, scopeIDs []string) bool {
	target := string(ct)
	for _, scopeID := range scopeIDs {
		for _, ag := range grants {
			for _, g := range ag.grants {
				if g.Permission == p && g.ScopeID == scopeID && g.hasTarget(target) {
					return true
				}
			}
		}
	}
	return false
}

// globalSetFromGrants folds system-scoped content-type grants into a value
// set.
func globalSetFromGrants(grants []*Grant) *GlobalPermissionSet {
	set := NewGlobalPermissionSet()
	for _, g := range grants {
		if g.ScopeID != systemScopeID {
			continue
		}
		for _, t := range g.TargetIDs {
			if IsContentType(t) {
				set.Add(ContentType(t), g.Permission)
			}
		}
	}
	return set
}

// canAccessWithChain checks an item's visibility list against a precomputed
// accessor chain set. An empty list means globally readable.
func canAccessWithChain(ctx context.Context, r graph.Reader, itemID string, chain map[string]bool) (bool, error) {
	edges, err := r.Edges(ctx, itemID, graph.Out, EdgeAccess)
	if err != nil {
		return false, err
	}
	if len(edges) == 0 {
		return true, nil
	}
	for _, e := range edges {
		if chain[e.To] {
			return true, nil
		}
	}
	return false, nil
}

// currentScopeID maps the resolution scope to the scope identifier carried
// by grants made at that scope.
func currentScopeID(scope PermissionScope) string {
	if _, system := scope.(systemScope); system {
		return systemScopeID
	}
	return scope.ID()
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func containsString(hay []string, needle string) bool {
	for _, s := range hay {
		if s == needle {
			return true
		}
	}
	return false
}

func sortedSlice(types []PermissionType) []PermissionType {
	set := make(map[PermissionType]bool, len(types))
	for _, p := range types {
		set[p] = true
	}
	return sortedTypes(set)
}
