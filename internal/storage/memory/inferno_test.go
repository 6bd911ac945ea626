package memory

import (
	"context"
	"testing"

	"github.com/firepit/infernos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfernoMemoryStorage_CreateAndGet(t *testing.T) {
	storage := NewInfernoMemoryStorage()
	ctx := context.Background()

	t.Run("Assigns ID, timestamp and empty children", func(t *testing.T) {
		in, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "first", AuthorID: "1"})
		require.NoError(t, err)
		assert.NotEmpty(t, in.ID)
		assert.False(t, in.CreatedAt.IsZero())
		assert.Empty(t, in.ChildIDs)
		assert.Empty(t, in.ParentID)

		got, err := storage.GetInfernoByID(in.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Text)
	})

	t.Run("NotFound for unknown ID", func(t *testing.T) {
		_, err := storage.GetInfernoByID("404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInfernoMemoryStorage_AppendChild(t *testing.T) {
	storage := NewInfernoMemoryStorage()
	ctx := context.Background()

	parent, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "root", AuthorID: "1"})
	require.NoError(t, err)

	t.Run("Preserves insertion order", func(t *testing.T) {
		first, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "r1", AuthorID: "1", ParentID: parent.ID})
		require.NoError(t, err)
		second, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "r2", AuthorID: "2", ParentID: parent.ID})
		require.NoError(t, err)

		require.NoError(t, storage.AppendChild(ctx, parent.ID, first.ID))
		require.NoError(t, storage.AppendChild(ctx, parent.ID, second.ID))

		got, err := storage.GetInfernoByID(parent.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID, second.ID}, got.ChildIDs)
	})

	t.Run("Re-appending is a no-op", func(t *testing.T) {
		got, err := storage.GetInfernoByID(parent.ID)
		require.NoError(t, err)
		require.NoError(t, storage.AppendChild(ctx, parent.ID, got.ChildIDs[0]))

		again, err := storage.GetInfernoByID(parent.ID)
		require.NoError(t, err)
		assert.Equal(t, got.ChildIDs, again.ChildIDs)
	})

	t.Run("NotFound for unknown parent", func(t *testing.T) {
		assert.ErrorIs(t, storage.AppendChild(ctx, "404", "1"), domain.ErrNotFound)
	})
}

func TestInfernoMemoryStorage_ListTopLevel(t *testing.T) {
	storage := NewInfernoMemoryStorage()
	ctx := context.Background()

	p1, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "p1", AuthorID: "1"})
	require.NoError(t, err)
	p2, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "p2", AuthorID: "1"})
	require.NoError(t, err)
	p3, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "p3", AuthorID: "1"})
	require.NoError(t, err)

	// a reply never shows up in the top-level feed
	_, err = storage.CreateInferno(ctx, &domain.Inferno{Text: "reply", AuthorID: "1", ParentID: p1.ID})
	require.NoError(t, err)

	t.Run("Newest first with offset and limit", func(t *testing.T) {
		page, err := storage.ListTopLevel(0, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, p3.ID, page[0].ID)
		assert.Equal(t, p2.ID, page[1].ID)

		rest, err := storage.ListTopLevel(2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, p1.ID, rest[0].ID)
	})

	t.Run("Offset beyond the end yields an empty page", func(t *testing.T) {
		page, err := storage.ListTopLevel(10, 2)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("Count ignores replies", func(t *testing.T) {
		count, err := storage.CountTopLevel()
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestInfernoMemoryStorage_CultScope(t *testing.T) {
	storage := NewInfernoMemoryStorage()
	ctx := context.Background()

	a, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "a", AuthorID: "1", CultID: "c1"})
	require.NoError(t, err)
	b, err := storage.CreateInferno(ctx, &domain.Inferno{Text: "b", AuthorID: "2", CultID: "c1"})
	require.NoError(t, err)
	_, err = storage.CreateInferno(ctx, &domain.Inferno{Text: "c", AuthorID: "1", CultID: "c2"})
	require.NoError(t, err)

	t.Run("ListByCult in creation order", func(t *testing.T) {
		got, err := storage.ListByCult("c1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID)
		assert.Equal(t, b.ID, got[1].ID)
	})

	t.Run("ListByAuthor newest first", func(t *testing.T) {
		got, err := storage.ListByAuthor("1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].Text)
		assert.Equal(t, "a", got[1].Text)
	})

	t.Run("DeleteByCult removes only that cult's infernos", func(t *testing.T) {
		require.NoError(t, storage.DeleteByCult(ctx, "c1"))

		_, err := storage.GetInfernoByID(a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = storage.GetInfernoByID(b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		left, err := storage.ListByCult("c2")
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("DeleteByCult is idempotent", func(t *testing.T) {
		assert.NoError(t, storage.DeleteByCult(ctx, "c1"))
	})
}
