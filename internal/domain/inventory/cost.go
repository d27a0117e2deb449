package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost devuelve el nuevo costo base de una ubicación tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si el stock resultante no es positivo el costo de la entrada pasa a ser el nuevo costo.
func WeightedAverageCost(currentQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	total := currentQty.Add(inQty)
	if total.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	if currentQty.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	num := currentQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.DivRound(total, 6)
}
