package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func TestReadCatalog_Latin1(t *testing.T) {
	content := "sku,name,category,price,cost,initial_qty,reorder_level\n" +
		"SKU-ARROZ-001,Arroz Diana 500g,Granos,2.40,1.50,30,\n" +
		"SKU-PANELA-001,Panela orgánica,Dulces,1.10,0.60,12,4\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))

	rows, err := readCatalog(path, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Panela orgánica", rows[1].Name)
	assert.Equal(t, "2.4", rows[0].Price.String())

	req, err := rows[1].toRequest()
	require.NoError(t, err)
	require.NotNil(t, req.ReorderLevel)
	assert.Equal(t, 4, *req.ReorderLevel)

	req, err = rows[0].toRequest()
	require.NoError(t, err)
	assert.Nil(t, req.ReorderLevel)
}

func TestToRequest_BadReorderLevel(t *testing.T) {
	_, err := catalogRow{SKU: "X", Name: "X", ReorderLevel: "diez"}.toRequest()
	assert.Error(t, err)
}

func TestSeed_DemoCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := catalog.NewUseCase(store, repos.Products, repos.Barcodes, repos.Levels, logger.Nop())

	created, skipped, err := seed(ctx, uc, demoCatalog)
	require.NoError(t, err)
	assert.Equal(t, len(demoCatalog), created)
	assert.Zero(t, skipped)

	created, skipped, err = seed(ctx, uc, demoCatalog)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(demoCatalog), skipped)

	list, err := uc.ListProducts(ctx, dto.PageRequest{}, "SKU-COFFEE")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 40, list.Items[0].QtyOnHand)
}
