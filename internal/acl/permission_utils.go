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

// Enforcement wrappers: the only authorization entry points the rest of the
// system calls before reading or writing. Each turns an AclManager decision
// into a fail-fast check and performs no mutation of its own. Read checks
// fail with AccessDenied (rendered upstream as "not found" to avoid leaking
// existence); write checks fail with PermissionDenied naming the missing
// permission type.
package acl

import (
	"context"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
)

// CheckContentPermission fails with PermissionDenied unless the accessor
// holds the permission type over the whole content type at the manager's
// scope.
func CheckContentPermission(ctx context.Context, m *AclManager, accessor Accessor, ct ContentType, p PermissionType) error {
	ok, err := m.HasContentTypePermission(ctx, ct, p, accessor)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewPermissionDenied(accessor.ID(), string(ct), string(p), m.Scope().ID())
	}
	return nil
}

// CheckEntityPermission fails with PermissionDenied unless the accessor
// holds the permission type over the specific item.
func CheckEntityPermission(ctx context.Context, m *AclManager, itemID string, accessor Accessor, p PermissionType) error {
	ok, err := m.HasItemPermission(ctx, itemID, p, accessor)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewPermissionDenied(accessor.ID(), itemID, string(p), m.Scope().ID())
	}
	return nil
}

// CheckReadAccess fails with AccessDenied unless the accessor may read the
// item.
func CheckReadAccess(ctx context.Context, m *AclManager, itemID string, accessor Accessor) error {
	ok, err := m.CanAccess(ctx, itemID, accessor)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewAccessDenied(accessor.ID(), itemID)
	}
	return nil
}

// CheckGrantPermission fails with PermissionDenied unless the accessor may
// administer grants on the target item (holds the grant permission on it, or
// is an admin).
func CheckGrantPermission(ctx context.Context, m *AclManager, accessor Accessor, itemID string) error {
	return CheckEntityPermission(ctx, m, itemID, accessor, PermissionGrant)
}
