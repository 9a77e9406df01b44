package acl_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivegraph/archivegraph-go-components/internal/acl"
)

func TestGlobalPermissionSetEqualityIsOrderIndependent(t *testing.T) {
	a := acl.NewGlobalPermissionSet().
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionCreate).
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionUpdate).
		Add(acl.ContentTypeRepository, acl.PermissionDelete)
	b := acl.NewGlobalPermissionSet().
		Add(acl.ContentTypeRepository, acl.PermissionDelete).
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionUpdate).
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionCreate)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	b.Add(acl.ContentTypeCountry, acl.PermissionCreate)
	assert.False(t, a.Equal(b))
}

func TestGlobalPermissionSetAccessors(t *testing.T) {
	s := acl.NewGlobalPermissionSet()
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Has(acl.ContentTypeCountry, acl.PermissionCreate))
	assert.Empty(t, s.Get(acl.ContentTypeCountry))

	s.Add(acl.ContentTypeRepository, acl.PermissionUpdate).
		Add(acl.ContentTypeRepository, acl.PermissionCreate).
		Add(acl.ContentTypeCountry, acl.PermissionAnnotate)
	// Adding an existing pair changes nothing.
	s.Add(acl.ContentTypeRepository, acl.PermissionUpdate)

	assert.False(t, s.IsEmpty())
	assert.True(t, s.Has(acl.ContentTypeRepository, acl.PermissionCreate))
	assert.Equal(t, []acl.PermissionType{acl.PermissionCreate, acl.PermissionUpdate},
		s.Get(acl.ContentTypeRepository))
	assert.Equal(t, []acl.ContentType{acl.ContentTypeCountry, acl.ContentTypeRepository},
		s.ContentTypes())
}

func TestGlobalPermissionSetJSON(t *testing.T) {
	s := acl.NewGlobalPermissionSet().
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionUpdate).
		Add(acl.ContentTypeDocumentaryUnit, acl.PermissionCreate).
		Add(acl.ContentTypeVocabulary, acl.PermissionDelete)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"documentaryUnit": ["create", "update"],
		"vocabulary": ["delete"]
	}`, string(b))

	var parsed acl.GlobalPermissionSet
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.True(t, parsed.Equal(s))

	b, err = json.Marshal(acl.NewGlobalPermissionSet())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
}

func TestGlobalPermissionSetUnmarshalRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown content type", `{"spaceship": ["create"]}`},
		{"unknown permission type", `{"documentaryUnit": ["fly"]}`},
		{"not an object", `["documentaryUnit"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s acl.GlobalPermissionSet
			assert.Error(t, json.Unmarshal([]byte(tt.input), &s))
		})
	}
}
