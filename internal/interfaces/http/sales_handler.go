package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// HeaderIdempotencyKey cabecera opcional para reintentos seguros del cobro.
const HeaderIdempotencyKey = "Idempotency-Key"

// SalesHandler caja y consulta de órdenes (protegido).
type SalesHandler struct {
	checkout *sales.CheckoutUseCase
	orders   *sales.OrderQueryUseCase
	receipt  *sales.ReceiptUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(checkout *sales.CheckoutUseCase, orders *sales.OrderQueryUseCase, receipt *sales.ReceiptUseCase) *SalesHandler {
	return &SalesHandler{checkout: checkout, orders: orders, receipt: receipt}
}

// Checkout godoc
// @Summary      Cobrar carrito
// @Description  Valida stock, descuento y pago; crea la orden y descuenta inventario en una sola transacción.
// @Tags         checkout
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave para reintentos seguros"
// @Param        body             body    dto.CheckoutRequest  true   "Carrito, medio de pago y monto pagado"
// @Success      201  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	in.IdempotencyKey = c.Get(HeaderIdempotencyKey)
	out, err := h.checkout.Checkout(c.UserContext(), GetRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListOrders godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Página"  default(1)
// @Param        pageSize  query  int  false  "Tamaño"  default(20)
// @Success      200       {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *SalesHandler) ListOrders(c *fiber.Ctx) error {
	page := dto.PageRequest{Page: c.QueryInt("page", 1), PageSize: c.QueryInt("pageSize", dto.DefaultPageSize)}
	out, err := h.orders.ListOrders(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetOrder godoc
// @Summary      Obtener orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *SalesHandler) GetOrder(c *fiber.Ctx) error {
	out, err := h.orders.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar recibo PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.receipt.DownloadReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
