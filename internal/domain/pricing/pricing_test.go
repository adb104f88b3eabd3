package pricing

import (
	"errors"
	"testing"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound2_HalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"2.345":  "2.35",
		"-2.345": "-2.35",
		"2.344":  "2.34",
		"0.005":  "0.01",
		"10":     "10",
	}
	for in, want := range cases {
		assert.True(t, Round2(dec(in)).Equal(dec(want)), "Round2(%s)", in)
	}
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(dec("100.00"), 2).Equal(dec("200.00")))
	assert.True(t, LineTotal(dec("0.335"), 3).Equal(dec("1.01")))
}

func TestSettle_CashChange(t *testing.T) {
	s, err := Settle(dec("200.00"), nil, dec("250.00"), entity.PaymentCash)
	require.NoError(t, err)
	assert.True(t, s.Total.Equal(dec("200")))
	assert.True(t, s.Change.Equal(dec("50")))
	assert.True(t, s.Discount.IsZero())
}

func TestSettle_Discount(t *testing.T) {
	d := dec("20.005")
	_, err := Settle(dec("200.00"), &d, dec("179.98"), entity.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

	s, err := Settle(dec("200.00"), &d, dec("179.99"), entity.PaymentCard)
	require.NoError(t, err)
	assert.True(t, s.Discount.Equal(dec("20.01")))
	assert.True(t, s.Total.Equal(dec("179.99")))
	assert.True(t, s.Change.IsZero())
}

func TestSettle_Rejections(t *testing.T) {
	neg := dec("-1")
	_, err := Settle(dec("10"), &neg, dec("10"), entity.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	big := dec("10.01")
	_, err = Settle(dec("10"), &big, dec("10"), entity.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrDiscountExceedsSubtotal)
	var de *domain.DiscountError
	require.True(t, errors.As(err, &de))
	assert.True(t, de.Subtotal.Equal(dec("10")))

	_, err = Settle(dec("200.00"), nil, dec("199.99"), entity.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

	_, err = Settle(dec("200.00"), nil, dec("250.00"), entity.PaymentCard)
	assert.ErrorIs(t, err, domain.ErrCardAmountMismatch)

	_, err = Settle(dec("200.00"), nil, dec("199.99"), entity.PaymentCard)
	assert.ErrorIs(t, err, domain.ErrCardAmountMismatch)
	var pe *domain.PaymentError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "CARD", pe.Method)
}

func TestSettle_FullDiscount(t *testing.T) {
	d := dec("10")
	s, err := Settle(dec("10"), &d, decimal.Zero, entity.PaymentCash)
	require.NoError(t, err)
	assert.True(t, s.Total.IsZero())
	assert.True(t, s.Change.IsZero())
}
