package domain

// DiscountedPrice applies a percentage discount in [0,100] to a unit price.
// No rounding happens here; callers round at the display boundary only, so
// repeated computations do not compound rounding error.
func DiscountedPrice(price, discount float64) float64 {
	return price - (price * (discount / 100))
}

// LineSubtotal is the effective price of one cart line.
func LineSubtotal(item CartItem) float64 {
	return DiscountedPrice(item.Price, item.Discount) * float64(item.Quantity)
}

// CartTotal sums line subtotals over the items in order.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += LineSubtotal(item)
	}
	return total
}
