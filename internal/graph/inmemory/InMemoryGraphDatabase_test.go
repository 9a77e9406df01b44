package graph_inmemory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
	graph_inmemory "github.com/archivegraph/archivegraph-go-components/internal/graph/inmemory"
)

func newStore(t *testing.T) *graph_inmemory.InMemoryGraphDatabase {
	t.Helper()
	store, err := graph_inmemory.NewInMemoryGraphDatabase()
	require.NoError(t, err)
	return store
}

func seedVertices(t *testing.T, store *graph_inmemory.InMemoryGraphDatabase, ids ...string) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(tx graph.Tx) error {
		for _, id := range ids {
			if err := tx.AddVertex(&graph.Vertex{ID: id, Type: "node", Props: map[string]string{"name": id}}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a")

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx graph.Tx) error {
		if err := tx.AddVertex(&graph.Vertex{ID: "b", Type: "node"}); err != nil {
			return err
		}
		if _, err := tx.AddEdge("rel", "a", "b"); err != nil {
			return err
		}
		if err := tx.SetProperty("a", "name", "changed"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed transaction is visible.
	_, err = store.Vertex(ctx, "b")
	assert.True(t, common.IsErrNotFound(err))
	a, err := store.Vertex(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Prop("name"))
	edges, err := store.Edges(ctx, "a", graph.Out, "")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestRemoveVertexCascadesEdges(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a", "b", "c")

	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		if _, err := tx.AddEdge("rel", "a", "b"); err != nil {
			return err
		}
		if _, err := tx.AddEdge("rel", "b", "c"); err != nil {
			return err
		}
		_, err := tx.AddEdge("rel", "c", "a")
		return err
	}))

	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		return tx.RemoveVertex("b")
	}))

	_, err := store.Vertex(ctx, "b")
	assert.True(t, common.IsErrNotFound(err))
	out, err := store.Edges(ctx, "a", graph.Out, "")
	require.NoError(t, err)
	assert.Empty(t, out)
	in, err := store.Edges(ctx, "c", graph.In, "")
	require.NoError(t, err)
	assert.Empty(t, in)
	// The c->a edge does not touch b and survives.
	out, err = store.Edges(ctx, "c", graph.Out, "")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDuplicateVertexAndEdgeRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a", "b")

	err := store.Update(ctx, func(tx graph.Tx) error {
		return tx.AddVertex(&graph.Vertex{ID: "a", Type: "node"})
	})
	assert.ErrorIs(t, err, graph_inmemory.ErrVertexAlreadyExists)

	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		_, err := tx.AddEdge("rel", "a", "b")
		return err
	}))
	err = store.Update(ctx, func(tx graph.Tx) error {
		_, err := tx.AddEdge("rel", "a", "b")
		return err
	})
	assert.ErrorIs(t, err, graph_inmemory.ErrEdgeAlreadyExists)

	// Same endpoints under another label is a different edge.
	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		_, err := tx.AddEdge("other", "a", "b")
		return err
	}))
}

func TestEdgeEndpointsMustExist(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a")

	err := store.Update(ctx, func(tx graph.Tx) error {
		_, err := tx.AddEdge("rel", "a", "nope")
		return err
	})
	assert.True(t, common.IsErrNotFound(err))
	err = store.Update(ctx, func(tx graph.Tx) error {
		_, err := tx.AddEdge("rel", "nope", "a")
		return err
	})
	assert.True(t, common.IsErrNotFound(err))
}

func TestEdgesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a", "b", "c", "d")

	for _, to := range []string{"c", "b", "d"} {
		to := to
		require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
			_, err := tx.AddEdge("rel", "a", to)
			return err
		}))
	}

	edges, err := store.Edges(ctx, "a", graph.Out, "rel")
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "c", edges[0].To)
	assert.Equal(t, "b", edges[1].To)
	assert.Equal(t, "d", edges[2].To)

	// Removing the middle edge preserves the order of the rest.
	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		return tx.RemoveEdge("rel", "a", "b")
	}))
	edges, err = store.Edges(ctx, "a", graph.Out, "rel")
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "c", edges[0].To)
	assert.Equal(t, "d", edges[1].To)

	// Removing an absent edge is a no-op.
	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		return tx.RemoveEdge("rel", "a", "b")
	}))
}

func TestVerticesByProperty(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		for _, v := range []*graph.Vertex{
			{ID: "v2", Type: "doc", Props: map[string]string{"color": "red"}},
			{ID: "v1", Type: "doc", Props: map[string]string{"color": "red"}},
			{ID: "v3", Type: "repo", Props: map[string]string{"color": "red"}},
			{ID: "v4", Type: "doc", Props: map[string]string{"color": "blue"}},
		} {
			if err := tx.AddVertex(v); err != nil {
				return err
			}
		}
		return nil
	}))

	all, err := store.VerticesByProperty(ctx, "color", "red", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "v1", all[0].ID)
	assert.Equal(t, "v2", all[1].ID)
	assert.Equal(t, "v3", all[2].ID)

	docs, err := store.VerticesByProperty(ctx, "color", "red", "doc")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "v1", docs[0].ID)
	assert.Equal(t, "v2", docs[1].ID)
}

func TestSetPropertyDoesNotLeakFromFailedTransaction(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedVertices(t, store, "a")

	before, err := store.Vertex(ctx, "a")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Update(ctx, func(tx graph.Tx) error {
		if err := tx.SetProperty("a", "name", "changed"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The vertex value handed out before the transaction is untouched.
	assert.Equal(t, "a", before.Prop("name"))
	after, err := store.Vertex(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", after.Prop("name"))

	require.NoError(t, store.Update(ctx, func(tx graph.Tx) error {
		return tx.SetProperty("a", "name", "changed")
	}))
	after, err = store.Vertex(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "changed", after.Prop("name"))
}

func TestNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Vertex(ctx, "nope")
	assert.True(t, common.IsErrNotFound(err))

	err = store.Update(ctx, func(tx graph.Tx) error {
		return tx.SetProperty("nope", "k", "v")
	})
	assert.True(t, common.IsErrNotFound(err))

	err = store.Update(ctx, func(tx graph.Tx) error {
		return tx.RemoveVertex("nope")
	})
	assert.True(t, common.IsErrNotFound(err))
}
