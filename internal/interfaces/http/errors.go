package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
)

// validate instancia compartida; validator cachea la metadata de cada struct.
var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodifica el JSON y corre las reglas `validate`. Si falla ya respondió 400
// y devuelve ok=false.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Namespace()] = fe.Tag()
			}
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}
	return true, nil
}

// writeError traduce errores de dominio a HTTP: 400 reglas de negocio, 403, 404, 409, 500 almacenamiento.
func writeError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	resp := dto.ErrorResponse{Code: code, Message: err.Error()}

	var stockErr *domain.InsufficientStockError
	var notFoundErr *domain.ProductNotFoundError
	var payErr *domain.PaymentError
	var discErr *domain.DiscountError
	switch {
	case errors.As(err, &stockErr):
		resp.Details = map[string]any{
			"product_id": stockErr.ProductID, "sku": stockErr.SKU,
			"on_hand": stockErr.OnHand, "requested": stockErr.Requested,
		}
	case errors.As(err, &notFoundErr):
		resp.Details = map[string]any{"product_id": notFoundErr.ProductID}
	case errors.As(err, &payErr):
		resp.Details = map[string]any{
			"total": payErr.Total.StringFixed(2), "paid": payErr.Paid.StringFixed(2), "payment_method": payErr.Method,
		}
	case errors.As(err, &discErr):
		resp.Details = map[string]any{
			"subtotal": discErr.Subtotal.StringFixed(2), "discount": discErr.Discount.StringFixed(2),
		}
	}
	if status == fiber.StatusInternalServerError {
		resp.Message = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateSKU):
		return fiber.StatusConflict, "DUPLICATE_SKU"
	case errors.Is(err, domain.ErrDuplicateBarcode):
		return fiber.StatusConflict, "DUPLICATE_BARCODE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return fiber.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, domain.ErrInsufficientPayment):
		return fiber.StatusBadRequest, "INSUFFICIENT_PAYMENT"
	case errors.Is(err, domain.ErrCardAmountMismatch):
		return fiber.StatusBadRequest, "CARD_AMOUNT_MISMATCH"
	case errors.Is(err, domain.ErrInvalidDiscount):
		return fiber.StatusBadRequest, "INVALID_DISCOUNT"
	case errors.Is(err, domain.ErrDiscountExceedsSubtotal):
		return fiber.StatusBadRequest, "DISCOUNT_EXCEEDS_SUBTOTAL"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}
