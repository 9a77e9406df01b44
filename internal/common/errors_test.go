package common

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	pd := NewPermissionDenied("mike", "doc1", "update", "r1")
	ad := NewAccessDenied("mike", "doc1")
	nf := NewErrNotFound("doc1")

	assert.True(t, IsPermissionDenied(pd))
	assert.False(t, IsPermissionDenied(ad))
	assert.False(t, IsPermissionDenied(nf))

	assert.True(t, IsAccessDenied(ad))
	assert.False(t, IsAccessDenied(pd))

	assert.True(t, IsErrNotFound(nf))
	assert.False(t, IsErrNotFound(pd))

	assert.False(t, IsPermissionDenied(nil))
	assert.False(t, IsAccessDenied(nil))
	assert.False(t, IsErrNotFound(nil))
}

func TestErrorPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("loading item: %w", NewErrNotFound("doc1"))
	assert.True(t, IsErrNotFound(wrapped))

	wrapped = fmt.Errorf("saving grant: %w", NewPermissionDenied("mike", "doc1", "grant", "system"))
	assert.True(t, IsPermissionDenied(wrapped))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "404 Not Found: doc1", NewErrNotFound("doc1").Error())
	assert.Contains(t, NewPermissionDenied("mike", "doc1", "update", "r1").Error(), "'mike'")
	assert.Contains(t, NewAccessDenied("mike", "doc1").Error(), "cannot read item 'doc1'")
}
