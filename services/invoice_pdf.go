package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const pdfDescriptionWidth = 60

// RenderPDF renders an invoice as an A4 PDF document. The stored total must
// still match the line items; a drifted invoice is refused rather than printed.
func (s *InvoiceService) RenderPDF(ctx context.Context, p models.Principal, id uint) ([]byte, error) {
	invoice, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if sum := invoice.SumSubtotals().Round(2); !invoice.TotalPrice.Equal(sum) {
		return nil, consistency("invoice %d total %s does not match its line items (%s)",
			id, invoice.TotalPrice.StringFixed(2), sum.StringFixed(2))
	}

	var customer models.User
	if err := s.db.WithContext(ctx).Unscoped().First(&customer, invoice.UserID).Error; err != nil {
		return nil, lookupError(err, "user", "id", invoice.UserID)
	}
	address, err := NewAddressService(s.db).Primary(ctx, invoice.UserID)
	if err != nil {
		return nil, err
	}

	data, err := renderInvoice(invoice, &customer, address, true)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %d: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{"invoice_id": id, "bytes": len(data)}).Debug("Invoice PDF rendered")
	return data, nil
}

// InvoiceNumber is the printed reference of an invoice
func InvoiceNumber(id uint) string {
	return fmt.Sprintf("INV-%06d", id)
}

// lineDescription names what a line item bills for
func lineDescription(li models.LineItem) string {
	switch li.Kind() {
	case models.BillableAppointment:
		if li.Appointment != nil {
			return "Appointment " + li.Appointment.Date.Format("2006-01-02")
		}
		return "Appointment"
	case models.BillableProduct:
		if li.Product != nil {
			return li.Product.Name
		}
		return fmt.Sprintf("Product #%d", *li.ProductID)
	case models.BillableCourse:
		if li.Course != nil && li.Course.Description != "" {
			return "Course: " + truncate(li.Course.Description, pdfDescriptionWidth)
		}
		return fmt.Sprintf("Course #%d", *li.CourseID)
	default:
		return "Unknown item"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func renderInvoice(invoice *models.Invoice, customer *models.User, address *models.Address, compress bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+InvoiceNumber(invoice.ID), true)
	pdf.SetCreator("kendalls-studio-api", true)
	pdf.SetCreationDate(invoice.CreatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(120, 10, "Invoice "+InvoiceNumber(invoice.ID), "", 0, "L", false, 0, "")
	if invoice.IsPaid() {
		pdf.SetTextColor(0, 128, 0)
		pdf.CellFormat(70, 10, "PAID", "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+invoice.CreatedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+string(invoice.Status), "", 1, "L", false, 0, "")
	if invoice.PaymentMethod != "" {
		pdf.CellFormat(0, 6, "Payment method: "+tr(invoice.PaymentMethod), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(customer.FirstName+" "+customer.LastName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(customer.Email), "", 1, "L", false, 0, "")
	if address != nil {
		for _, line := range address.Lines() {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	widths := []float64{95, 20, 35, 40}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range []string{"Description", "Qty", "Unit price", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, title, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, li := range invoice.LineItems {
		pdf.CellFormat(widths[0], 7, tr(lineDescription(li)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", li.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(li.PriceAtPurchase), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(li.Subtotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money(invoice.TotalPrice), "1", 1, "R", false, 0, "")

	if invoice.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(invoice.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
