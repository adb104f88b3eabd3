package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado después de una entrada de mercancía.
// nuevo = ((stock * costo) + (entrada * costoEntrada)) / (stock + entrada), redondeado a centavos.
func WeightedAverageCost(onHand int, currentCost decimal.Decimal, inQty int, inCost decimal.Decimal) decimal.Decimal {
	if inQty <= 0 {
		return currentCost
	}
	if onHand < 0 {
		onHand = 0
	}
	sum := decimal.NewFromInt(int64(onHand + inQty))
	num := decimal.NewFromInt(int64(onHand)).Mul(currentCost).
		Add(decimal.NewFromInt(int64(inQty)).Mul(inCost))
	return num.Div(sum).Round(2)
}
