package acl

import (
	"context"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

// Bootstrap idempotently creates the fixed infrastructure vertices the
// engine resolves against: one vertex per registered content type and the
// well-known admin group. Components call it once at startup, after which
// the registries are read-only.
func Bootstrap(ctx context.Context, store graph.Store) error {
	return store.Update(ctx, func(tx graph.Tx) error {
		for _, ct := range ContentTypes {
			if err := ensureVertex(ctx, tx, &graph.Vertex{
				ID:    string(ct),
				Type:  TypeContentType,
				Props: map[string]string{PropName: string(ct)},
			}); err != nil {
				return err
			}
		}
		return ensureVertex(ctx, tx, &graph.Vertex{
			ID:    AdminGroupID,
			Type:  string(ContentTypeGroup),
			Props: map[string]string{PropName: "Administrators"},
		})
	})
}

func ensureVertex(ctx context.Context, tx graph.Tx, v *graph.Vertex) error {
	_, err := tx.Vertex(ctx, v.ID)
	if err == nil {
		return nil
	}
	if !common.IsErrNotFound(err) {
		return err
	}
	return tx.AddVertex(v)
}
