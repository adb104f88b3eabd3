package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// OrderQueryUseCase consultas de solo lectura sobre órdenes de venta.
type OrderQueryUseCase struct {
	orderRepo repository.SalesOrderRepository
}

// NewOrderQueryUseCase construye el caso de uso.
func NewOrderQueryUseCase(orderRepo repository.SalesOrderRepository) *OrderQueryUseCase {
	return &OrderQueryUseCase{orderRepo: orderRepo}
}

// ListOrders página de órdenes, más recientes primero, con el total de órdenes.
func (uc *OrderQueryUseCase) ListOrders(ctx context.Context, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.Normalize()
	list, total, err := uc.orderRepo.List(ctx, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderSummaryResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.OrderSummaryResponse{
			ID:            s.ID,
			OrderNo:       s.OrderNo,
			PaymentMethod: string(s.PaymentMethod),
			Total:         s.Total,
			ItemCount:     s.ItemCount,
			CreatedAt:     s.CreatedAt,
		})
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: total},
	}, nil
}

// GetOrder orden completa con sus ítems.
func (uc *OrderQueryUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(o *entity.SalesOrder) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		PaymentMethod: string(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Total:         o.Total,
		PaidAmount:    o.PaidAmount,
		ChangeAmount:  o.ChangeAmount,
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		Items:         make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Qty:       it.Qty,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}
