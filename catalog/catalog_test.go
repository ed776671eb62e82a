package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"doghouse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dogs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestItems_NormalizesAndDropsEmpty(t *testing.T) {
	path := writeCatalog(t, `[
		{"name": "  Fido ", "image": "http://a/f.png"},
		{"name": "", "image": "   "},
		{"image": "http://a/only-image.png"},
		42,
		{"name": "Bolt"}
	]`)

	items := New(path).Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Fido", models.Deref(items[0].Name))
	assert.Nil(t, items[1].Name)
	assert.Equal(t, "http://a/only-image.png", models.Deref(items[1].Image))
	assert.Equal(t, "Bolt", models.Deref(items[2].Name))
	assert.Nil(t, items[2].Image)
}

func TestItems_MissingFileIsEmpty(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope.json"))
	assert.Empty(t, c.Items())
	assert.Empty(t, c.Enumerated())

	_, ok := c.Random()
	assert.False(t, ok)
}

func TestItems_MalformedFileIsEmpty(t *testing.T) {
	c := New(writeCatalog(t, `{"name": "not an array"`))
	assert.NotNil(t, c.Items())
	assert.Empty(t, c.Items())
}

func TestItems_LoadedOnce(t *testing.T) {
	path := writeCatalog(t, `[{"name":"Fido","image":"http://a/f.png"}]`)
	c := New(path)
	require.Len(t, c.Items(), 1)

	// Later edits to the file are not observed.
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	assert.Len(t, c.Items(), 1)
}

func TestEnumerated_SequentialIDs(t *testing.T) {
	path := writeCatalog(t, `[
		{"name":"A"},{"name":"B"},{"name":""},{"name":"C"}
	]`)

	got := New(path).Enumerated()
	require.Len(t, got, 3)
	seen := map[uint]bool{}
	for i, item := range got {
		require.NotNil(t, item.ID)
		assert.Equal(t, uint(i+1), *item.ID)
		assert.False(t, seen[*item.ID], "duplicate id %d", *item.ID)
		seen[*item.ID] = true
		assert.Nil(t, item.CreatedAt)
	}
	assert.Equal(t, "C", models.Deref(got[2].Name))
}

func TestRandom_PicksFromItems(t *testing.T) {
	c := New(writeCatalog(t, `[{"name":"A"},{"name":"B"}]`))
	for i := 0; i < 20; i++ {
		dog, ok := c.Random()
		require.True(t, ok)
		assert.Contains(t, []string{"A", "B"}, models.Deref(dog.Name))
	}
}

func TestBundledDataset(t *testing.T) {
	items := New("").Items()
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.False(t, item.Empty())
	}
}

func TestItems_ConcurrentAccess(t *testing.T) {
	c := New(writeCatalog(t, `[{"name":"A"},{"name":"B"},{"name":"C"}]`))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, c.Enumerated(), 3)
		}()
	}
	wg.Wait()
}
