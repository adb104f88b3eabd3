package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// UseCase casos de uso del catálogo: productos y códigos de barras.
// El stock inicial se registra en el libro de inventario dentro de la misma transacción del alta.
type UseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	barcodeRepo repository.BarcodeRepository
	levelRepo   repository.InventoryLevelRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso. Los repositorios sueltos se usan solo para lecturas.
func NewUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	barcodeRepo repository.BarcodeRepository,
	levelRepo repository.InventoryLevelRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		barcodeRepo: barcodeRepo,
		levelRepo:   levelRepo,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CreateProduct crea el producto, su nivel de inventario y, si initial_qty > 0, el movimiento IN inicial.
func (uc *UseCase) CreateProduct(ctx context.Context, role entity.Role, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !role.CanManageCatalog() {
		return nil, domain.ErrForbidden
	}
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("%w: sku y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: precio y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.InitialQty < 0 {
		return nil, fmt.Errorf("%w: la cantidad inicial no puede ser negativa", domain.ErrInvalidInput)
	}
	if in.InitialQty > entity.MaxQty {
		return nil, fmt.Errorf("%w: la cantidad inicial supera %d", domain.ErrInvalidQuantity, entity.MaxQty)
	}
	reorder := entity.DefaultReorderLevel
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 || *in.ReorderLevel > entity.MaxQty {
			return nil, fmt.Errorf("%w: el nivel de reorden debe estar entre 0 y %d", domain.ErrInvalidInput, entity.MaxQty)
		}
		reorder = *in.ReorderLevel
	}

	now := uc.now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      name,
		Category:  strings.TrimSpace(in.Category),
		Price:     pricing.Round2(in.Price),
		Cost:      pricing.Round2(in.Cost),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	level := &entity.InventoryLevel{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		QtyOnHand:    in.InitialQty,
		ReorderLevel: reorder,
		UpdatedAt:    now,
	}

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		existing, err := repos.Products.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateSKU
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if err := repos.Levels.Create(ctx, level); err != nil {
			return err
		}
		if in.InitialQty > 0 {
			return repos.Movements.Create(ctx, &entity.InventoryMovement{
				ID:        uuid.New().String(),
				ProductID: product.ID,
				Type:      entity.MovementTypeIN,
				Qty:       in.InitialQty,
				Reason:    entity.ReasonInitialStock,
				CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", product.ID).Str("sku", sku).Int("initial_qty", in.InitialQty).Msg("producto creado")
	return toProductResponse(product, level, nil), nil
}

// UpdateProduct modifica nombre, categoría, precio, costo y nivel de reorden. El SKU es inmutable.
func (uc *UseCase) UpdateProduct(ctx context.Context, role entity.Role, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !role.CanManageCatalog() {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: el nombre no puede quedar vacío", domain.ErrInvalidInput)
	}
	if (in.Price != nil && in.Price.IsNegative()) || (in.Cost != nil && in.Cost.IsNegative()) {
		return nil, fmt.Errorf("%w: precio y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.ReorderLevel != nil && (*in.ReorderLevel < 0 || *in.ReorderLevel > entity.MaxQty) {
		return nil, fmt.Errorf("%w: el nivel de reorden debe estar entre 0 y %d", domain.ErrInvalidInput, entity.MaxQty)
	}

	var (
		product *entity.Product
		level   *entity.InventoryLevel
	)
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		product, err = repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			product.Name = strings.TrimSpace(*in.Name)
		}
		if in.Category != nil {
			product.Category = strings.TrimSpace(*in.Category)
		}
		if in.Price != nil {
			product.Price = pricing.Round2(*in.Price)
		}
		if in.Cost != nil {
			product.Cost = pricing.Round2(*in.Cost)
		}
		product.UpdatedAt = uc.now()
		if err := repos.Products.Update(ctx, product); err != nil {
			return err
		}
		if in.ReorderLevel != nil {
			if err := repos.Levels.UpdateReorderLevel(ctx, product.ID, *in.ReorderLevel); err != nil {
				return err
			}
		}
		level, err = repos.Levels.GetByProduct(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, level, nil), nil
}

// DeactivateProduct baja lógica: el producto deja de venderse pero su historial se conserva.
func (uc *UseCase) DeactivateProduct(ctx context.Context, role entity.Role, id string) error {
	if !role.CanManageCatalog() {
		return domain.ErrForbidden
	}
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		product.IsActive = false
		product.UpdatedAt = uc.now()
		return repos.Products.Update(ctx, product)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto desactivado")
	return nil
}

// AddBarcode asocia un código al producto. Si es principal, limpia la marca de los demás
// códigos del producto y luego inserta, todo en la misma transacción.
func (uc *UseCase) AddBarcode(ctx context.Context, role entity.Role, productID string, in dto.AddBarcodeRequest) (*dto.BarcodeResponse, error) {
	if !role.CanManageCatalog() {
		return nil, domain.ErrForbidden
	}
	code := strings.TrimSpace(in.CodeValue)
	if code == "" {
		return nil, fmt.Errorf("%w: el valor del código es obligatorio", domain.ErrInvalidInput)
	}

	barcode := &entity.BarcodeEntry{
		ID:        uuid.New().String(),
		ProductID: productID,
		CodeValue: code,
		IsPrimary: in.IsPrimary,
		CreatedAt: uc.now(),
	}
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		format, ok := entity.ParseBarcodeFormat(in.Format)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, in.Format)
		}
		barcode.Format = format
		exists, err := repos.Barcodes.ExistsByFormatAndCode(ctx, format, code)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateBarcode
		}
		if barcode.IsPrimary {
			if err := repos.Barcodes.ClearPrimary(ctx, productID); err != nil {
				return err
			}
		}
		return repos.Barcodes.Create(ctx, barcode)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", productID).Str("format", string(barcode.Format)).Bool("primary", barcode.IsPrimary).Msg("código de barras registrado")
	resp := toBarcodeResponse(*barcode)
	return &resp, nil
}

// FindByBarcode devuelve el producto activo asociado al código escaneado.
func (uc *UseCase) FindByBarcode(ctx context.Context, code string) (*dto.BarcodeLookupResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: código vacío", domain.ErrInvalidInput)
	}
	match, err := uc.barcodeRepo.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.BarcodeLookupResponse{
		ProductID: match.Product.ID,
		SKU:       match.Product.SKU,
		Name:      match.Product.Name,
		Price:     match.Product.Price,
		QtyOnHand: match.Product.QtyOnHand,
		Format:    string(match.Barcode.Format),
		CodeValue: match.Barcode.CodeValue,
		IsPrimary: match.Barcode.IsPrimary,
	}, nil
}

// ListProducts lista productos activos con su stock; keyword filtra por SKU o nombre.
func (uc *UseCase) ListProducts(ctx context.Context, page dto.PageRequest, keyword string) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, total, err := uc.productRepo.ListActive(ctx, repository.ProductFilter{
		Keyword: strings.TrimSpace(keyword),
		Limit:   page.PageSize,
		Offset:  page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for i := range list {
		ps := list[i]
		items = append(items, *toProductResponse(&ps.Product, &entity.InventoryLevel{
			ProductID:    ps.ID,
			QtyOnHand:    ps.QtyOnHand,
			ReorderLevel: ps.ReorderLevel,
		}, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: total},
	}, nil
}

// GetProduct devuelve el producto (activo o no) con su stock y sus códigos de barras.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	level, err := uc.levelRepo.GetByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	barcodes, err := uc.barcodeRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, level, barcodes), nil
}

func toProductResponse(p *entity.Product, level *entity.InventoryLevel, barcodes []entity.BarcodeEntry) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	resp := &dto.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Cost:      p.Cost,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if level != nil {
		resp.QtyOnHand = level.QtyOnHand
		resp.ReorderLevel = level.ReorderLevel
	}
	for _, b := range barcodes {
		resp.Barcodes = append(resp.Barcodes, toBarcodeResponse(b))
	}
	return resp
}

func toBarcodeResponse(b entity.BarcodeEntry) dto.BarcodeResponse {
	return dto.BarcodeResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Format:    string(b.Format),
		CodeValue: b.CodeValue,
		IsPrimary: b.IsPrimary,
		CreatedAt: b.CreatedAt,
	}
}
