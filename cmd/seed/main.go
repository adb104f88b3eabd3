// seed carga el catálogo inicial: cinco productos de demostración o un CSV exportado del
// sistema anterior. Cada fila pasa por el caso de uso de alta, así que el stock inicial
// queda registrado en el libro de inventario.
//
// Uso:
//
//	go run ./cmd/seed                       # catálogo demo
//	go run ./cmd/seed -csv catalogo.csv     # CSV UTF-8
//	go run ./cmd/seed -csv cat.csv -latin1  # CSV Windows-1252 (exportes de Excel)
//
// Columnas del CSV: sku,name,category,price,cost,initial_qty,reorder_level
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// catalogRow fila del CSV de catálogo.
type catalogRow struct {
	SKU          string          `csv:"sku"`
	Name         string          `csv:"name"`
	Category     string          `csv:"category"`
	Price        decimal.Decimal `csv:"price"`
	Cost         decimal.Decimal `csv:"cost"`
	InitialQty   int             `csv:"initial_qty"`
	ReorderLevel string          `csv:"reorder_level"`
}

var demoCatalog = []catalogRow{
	{SKU: "SKU-COFFEE-001", Name: "Café molido 500g", Category: "Bebidas", Price: decimal.RequireFromString("12.50"), Cost: decimal.RequireFromString("7.80"), InitialQty: 40},
	{SKU: "SKU-TEA-001", Name: "Té verde 20 bolsitas", Category: "Bebidas", Price: decimal.RequireFromString("4.90"), Cost: decimal.RequireFromString("2.10"), InitialQty: 25},
	{SKU: "SKU-MILK-001", Name: "Leche entera 1L", Category: "Lácteos", Price: decimal.RequireFromString("1.35"), Cost: decimal.RequireFromString("0.90"), InitialQty: 60, ReorderLevel: "20"},
	{SKU: "SKU-BREAD-001", Name: "Pan tajado", Category: "Panadería", Price: decimal.RequireFromString("2.75"), Cost: decimal.RequireFromString("1.40"), InitialQty: 8},
	{SKU: "SKU-SUGAR-001", Name: "Azúcar 1kg", Category: "Despensa", Price: decimal.RequireFromString("1.99"), Cost: decimal.RequireFromString("1.20"), InitialQty: 0, ReorderLevel: "5"},
}

func main() {
	csvPath := flag.String("csv", "", "ruta del CSV de catálogo (vacío = catálogo demo)")
	latin1 := flag.Bool("latin1", false, "el CSV viene en Windows-1252")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	rows := demoCatalog
	if *csvPath != "" {
		rows, err = readCatalog(*csvPath, *latin1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, "pos-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repos := postgres.NewRepos(pool)
	uc := catalog.NewUseCase(postgres.NewTxRunner(pool), repos.Products, repos.Barcodes, repos.Levels, log.Named("catalog"))

	created, skipped, err := seed(ctx, uc, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Productos creados: %d, omitidos (SKU existente): %d\n", created, skipped)
}

// seed crea los productos; los SKU repetidos se omiten para que el comando sea re-ejecutable.
func seed(ctx context.Context, uc *catalog.UseCase, rows []catalogRow) (created, skipped int, err error) {
	for i, r := range rows {
		req, err := r.toRequest()
		if err != nil {
			return created, skipped, fmt.Errorf("fila %d (%s): %w", i+1, r.SKU, err)
		}
		if _, err := uc.CreateProduct(ctx, entity.RoleAdmin, req); err != nil {
			if errors.Is(err, domain.ErrDuplicateSKU) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("fila %d (%s): %w", i+1, r.SKU, err)
		}
		created++
	}
	return created, skipped, nil
}

func readCatalog(path string, latin1 bool) ([]catalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var in io.Reader = f
	if latin1 {
		in = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}
	var rows []catalogRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r catalogRow) toRequest() (dto.CreateProductRequest, error) {
	req := dto.CreateProductRequest{
		SKU:        strings.TrimSpace(r.SKU),
		Name:       strings.TrimSpace(r.Name),
		Category:   strings.TrimSpace(r.Category),
		Price:      r.Price,
		Cost:       r.Cost,
		InitialQty: r.InitialQty,
	}
	if s := strings.TrimSpace(r.ReorderLevel); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("reorder_level %q: %w", s, err)
		}
		req.ReorderLevel = &n
	}
	return req, nil
}
