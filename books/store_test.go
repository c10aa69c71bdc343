package books_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/bookstack/orders-management-api/books"
)

func newSQLiteStore(t *testing.T) *books.SQLStore {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// An in-memory database exists per connection; a single connection
	// keeps every query on the same database.
	db.SetMaxOpenConns(1)

	store, err := books.NewSQLStore(db)
	require.NoError(t, err)
	require.NoError(t, store.CreateSchema(context.Background()))

	return store
}

func Test_SQLStore_InsertAndFindByID(t *testing.T) {
	store := newSQLiteStore(t)

	book := &books.Book{
		Title:  "The Silent Library",
		Author: "Ann Patchett",
		Year:   2020,
		Pages: []books.Page{
			{Number: 1, Body: "It began quietly."},
			{Number: 2, Body: "And then it did not."},
		},
	}

	id, err := store.Insert(context.Background(), book)
	require.NoError(t, err)
	assert.Positive(t, id)

	loaded, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "The Silent Library", loaded.Title)
	assert.Equal(t, 2020, loaded.Year)
	require.Len(t, loaded.Pages, 2)
	assert.Equal(t, 1, loaded.Pages[0].Number)
	assert.Equal(t, "And then it did not.", loaded.Pages[1].Body)
}

func Test_SQLStore_FindByID_Missing(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.FindByID(context.Background(), 99)

	assert.ErrorIs(t, err, books.ErrBookNotFound)
}

func Test_SQLStore_ListWithOffsetAndLimit(t *testing.T) {
	store := newSQLiteStore(t)

	titles := []string{"First", "Second", "Third"}
	for _, title := range titles {
		_, err := store.Insert(context.Background(), &books.Book{
			Title:  title,
			Author: "Someone",
			Year:   2000,
			Pages:  []books.Page{{Number: 1, Body: "content"}},
		})
		require.NoError(t, err)
	}

	result, err := store.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Second", result[0].Title)
	assert.Equal(t, "Third", result[1].Title)
	require.Len(t, result[0].Pages, 1)
	assert.Equal(t, "content", result[0].Pages[0].Body)

	empty, err := store.List(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func Test_SQLStore_UpdateAndDelete(t *testing.T) {
	store := newSQLiteStore(t)

	id, err := store.Insert(context.Background(), &books.Book{
		Title:  "Original",
		Author: "Someone",
		Year:   1999,
		Pages:  []books.Page{{Number: 1, Body: "content"}},
	})
	require.NoError(t, err)

	require.NoError(t, store.Update(context.Background(), id, "Renamed", 2001))

	updated, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2001, updated.Year)

	require.NoError(t, store.Delete(context.Background(), id))

	_, err = store.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, books.ErrBookNotFound)

	assert.ErrorIs(t, store.Update(context.Background(), id, "x", 2002), books.ErrBookNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), id), books.ErrBookNotFound)
}
