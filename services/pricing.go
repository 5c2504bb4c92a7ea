package services

import (
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// AppointmentPrice is quotePerHour * duration / 60, rounded to cents
func AppointmentPrice(quotePerHour decimal.Decimal, durationMinutes int) decimal.Decimal {
	return quotePerHour.Mul(decimal.NewFromInt(int64(durationMinutes))).Div(minutesPerHour).Round(2)
}

// ProductSubtotal is (price + price*vat) * quantity, rounded to cents.
// vat is a fraction, 0.21 for 21%.
func ProductSubtotal(price, vat decimal.Decimal, quantity int) decimal.Decimal {
	gross := price.Add(price.Mul(vat))
	return gross.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// PriceLine returns the unit price frozen on the line item and its subtotal.
// Products must have their category loaded.
func PriceLine(item models.Billable, quantity int) (priceAtPurchase, subtotal decimal.Decimal, err error) {
	switch b := item.(type) {
	case *models.Appointment:
		return b.Price, b.Price, nil
	case *models.Course:
		return b.EnrollmentPrice, b.EnrollmentPrice, nil
	case *models.Product:
		if !models.SameRecord(b.ProductCategory.ID, b.ProductCategoryID) {
			return decimal.Zero, decimal.Zero, consistency("product %d has no category loaded", b.ID)
		}
		return b.Price, ProductSubtotal(b.Price, b.ProductCategory.VATPercentage, quantity), nil
	default:
		return decimal.Zero, decimal.Zero, consistency("unknown billable %T", item)
	}
}
