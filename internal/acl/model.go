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

// Package acl implements the scoped, inheriting permission-resolution engine
// of the ArchiveGraph catalog: accessor and scope modeling, permission-set
// value types, the AclManager resolution and mutation algorithms, and the
// fail-fast enforcement wrappers used by write paths.
package acl

import (
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

// ContentType is the class of a manageable entity, used for coarse-grained,
// non-item-specific grants. Each content type is backed by a vertex of type
// TypeContentType whose identifier is the content-type name.
type ContentType string

const (
	ContentTypeCountry         ContentType = "country"
	ContentTypeRepository      ContentType = "repository"
	ContentTypeDocumentaryUnit ContentType = "documentaryUnit"
	ContentTypeHistoricalAgent ContentType = "historicalAgent"
	ContentTypeUserProfile     ContentType = "userProfile"
	ContentTypeGroup           ContentType = "group"
	ContentTypeAnnotation      ContentType = "annotation"
	ContentTypeLink            ContentType = "link"
	ContentTypeVocabulary      ContentType = "vocabulary"
)

// ContentTypes is the fixed registry of content types participating in ACL.
// It is initialized once and never mutated.
var ContentTypes = []ContentType{
	ContentTypeCountry,
	ContentTypeRepository,
	ContentTypeDocumentaryUnit,
	ContentTypeHistoricalAgent,
	ContentTypeUserProfile,
	ContentTypeGroup,
	ContentTypeAnnotation,
	ContentTypeLink,
	ContentTypeVocabulary,
}

// IsContentType reports whether name is a registered content type.
func IsContentType(name string) bool {
	for _, ct := range ContentTypes {
		if string(ct) == name {
			return true
		}
	}
	return false
}

// PermissionType is an action kind.
type PermissionType string

const (
	PermissionCreate   PermissionType = "create"
	PermissionUpdate   PermissionType = "update"
	PermissionDelete   PermissionType = "delete"
	PermissionAnnotate PermissionType = "annotate"
	PermissionOwner    PermissionType = "owner"
	PermissionGrant    PermissionType = "grant"
)

// PermissionTypes is the fixed registry of permission types.
var PermissionTypes = []PermissionType{
	PermissionCreate,
	PermissionUpdate,
	PermissionDelete,
	PermissionAnnotate,
	PermissionOwner,
	PermissionGrant,
}

// Graph vocabulary. Permission grants, visibility lists and scope links are
// ordinary labeled edges; no bespoke persisted format exists.
const (
	// EdgeBelongsTo links a member (user or group) to a group it
	// directly belongs to.
	EdgeBelongsTo graph.Label = "belongsTo"
	// EdgeAccess links an item to one accessor on its visibility list.
	EdgeAccess graph.Label = "access"
	// EdgeHasGrant links an accessor to a grant vertex it holds.
	EdgeHasGrant graph.Label = "hasGrant"
	// EdgeHasTarget links a grant vertex to its target (an item vertex
	// or a content-type vertex).
	EdgeHasTarget graph.Label = "hasTarget"
	// EdgeHasScope links a grant vertex to the scope it applies within.
	// A grant without this edge applies at the system scope.
	EdgeHasScope graph.Label = "hasScope"
	// EdgeHasGrantee links a grant vertex to the accessor that issued it.
	EdgeHasGrantee graph.Label = "hasGrantee"
	// EdgeParentScope links a scope vertex to its parent scope. A scope
	// without this edge is a direct child of the system scope.
	EdgeParentScope graph.Label = "parentScope"
)

const (
	// TypePermissionGrant is the vertex type of grant vertices.
	TypePermissionGrant = "PermissionGrant"
	// TypeContentType is the vertex type of content-type vertices.
	TypeContentType = "ContentType"

	// PropName is the display-name property carried by content-type,
	// group and user vertices.
	PropName = "name"
	// PropPermission is the permission-type property of a grant vertex.
	PropPermission = "permission"

	// AdminGroupID is the well-known identifier of the distinguished
	// admin group. Membership in it (direct or transitive) short-circuits
	// every permission check to granted.
	AdminGroupID = "admin"
)

// Accessor is anything that can hold permissions: a user, a group, or the
// anonymous sentinel. The variant set is closed; resolution code switches
// exhaustively over it.
type Accessor interface {
	// ID is the identifier of the backing vertex, or "anonymous" for the
	// sentinel.
	ID() string
	// IsAnonymous reports whether this is the anonymous sentinel.
	IsAnonymous() bool

	isAccessor()
}

// User is a vertex-backed user accessor.
type User struct {
	id string
}

// NewUser returns the user accessor for the given vertex identifier.
func NewUser(id string) *User { return &User{id: id} }

func (u *User) ID() string        { return u.id }
func (u *User) IsAnonymous() bool { return false }
func (u *User) isAccessor()       {}

// Group is a vertex-backed group accessor. Groups may belong to other
// groups; membership is transitive for resolution purposes.
type Group struct {
	id string
}

// NewGroup returns the group accessor for the given vertex identifier.
func NewGroup(id string) *Group { return &Group{id: id} }

func (g *Group) ID() string        { return g.id }
func (g *Group) IsAnonymous() bool { return false }
func (g *Group) isAccessor()       {}

// AdminGroup is the distinguished admin group accessor.
var AdminGroup = NewGroup(AdminGroupID)

// anonymous is the accessor sentinel for "no identity". It has no backing
// vertex, no groups and no grants, and is never admin.
type anonymous struct{}

func (anonymous) ID() string        { return "anonymous" }
func (anonymous) IsAnonymous() bool { return true }
func (anonymous) isAccessor()       {}

// Anonymous is the process-wide anonymous accessor sentinel.
var Anonymous Accessor = anonymous{}

// PermissionScope is a node in the containment hierarchy used both for
// identifier namespacing and for permission inheritance. The variant set is
// closed: the system-scope sentinel and vertex-backed graph scopes.
type PermissionScope interface {
	// ID is the identifier of the backing scope vertex, or "system" for
	// the system scope.
	ID() string
	// IDPath is the ordered scope chain, nearest-first: the scope itself,
	// then its ancestors outward. The system scope is implicit at the end
	// of every path and is not included.
	IDPath() []string

	isScope()
}

// systemScope is the unique root of the scope hierarchy: no backing vertex,
// empty ancestor path, equal only to itself.
type systemScope struct{}

func (systemScope) ID() string       { return "system" }
func (systemScope) IDPath() []string { return nil }
func (systemScope) isScope()         {}

// SystemScope is the process-wide system-scope sentinel, the default
// resolution scope.
var SystemScope PermissionScope = systemScope{}

// GraphScope is a vertex-backed permission scope (a country, repository,
// collection...). Its ancestor path is resolved eagerly at load time; no
// graph reads happen after construction.
type GraphScope struct {
	id   string
	path []string
}

func (s *GraphScope) ID() string { return s.id }

func (s *GraphScope) IDPath() []string {
	out := make([]string, len(s.path))
	copy(out, s.path)
	return out
}

func (s *GraphScope) isScope() {}

// Grant is the record of one accessor holding one permission type over one
// or more targets, optionally within a scope. It mirrors a grant vertex and
// its outgoing edges.
type Grant struct {
	ID         string         `json:"id"`
	AccessorID string         `json:"accessor"`
	Permission PermissionType `json:"permission"`
	TargetIDs  []string       `json:"targets"`
	// ScopeID is empty for system-scoped grants.
	ScopeID string `json:"scope,omitempty"`
	// GranteeID records which accessor issued the grant, when known.
	GranteeID string `json:"grantee,omitempty"`
}

// hasTarget reports whether the grant applies to the given target vertex.
func (g *Grant) hasTarget(id string) bool {
	for _, t := range g.TargetIDs {
		if t == id {
			return true
		}
	}
	return false
}
