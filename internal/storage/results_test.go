package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maltedev/keepa-arbitrage/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []models.ProductRecord {
	rank := 812
	first := models.NewProductRecord("B01IF1HJAO", models.UK, 120, 1.2, &rank)
	first.AddMarket("DE", 100)
	first.AddMarket("IT", 99.99)

	second := models.NewProductRecord("B0020K966M", models.UK, 349.99, 1.2, nil)
	second.AddMarket("ES", 289.5)

	return []models.ProductRecord{*first, *second}
}

func TestResultStore_RoundTrip(t *testing.T) {
	store := NewResultStore(t.TempDir(), "Weber")
	records := sampleRecords()

	require.NoError(t, store.Save(records))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestResultStore_Format(t *testing.T) {
	dir := t.TempDir()
	store := NewResultStore(dir, "Weber")

	assert.Equal(t, filepath.Join(dir, "selected_products_Weber.json"), store.Path())
	require.NoError(t, store.Save(sampleRecords()))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "[\n    {\n        \"ASIN\": \"B01IF1HJAO\""))
	assert.Contains(t, content, `"Buy box": 120,`)
	assert.Contains(t, content, `"Sales Per Month": null,`)
	assert.Contains(t, content, `"Keepa Link": "https://keepa.com/#!product/2-B01IF1HJAO",`)
	assert.Contains(t, content, `"DE": 100`)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestResultStore_Overwrites(t *testing.T) {
	store := NewResultStore(t.TempDir(), "Weber")

	require.NoError(t, store.Save(sampleRecords()))
	require.NoError(t, store.Save(nil))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestResultStore_LoadMissing(t *testing.T) {
	store := NewResultStore(t.TempDir(), "nothing")

	_, err := store.Load()
	assert.True(t, os.IsNotExist(err))
}
