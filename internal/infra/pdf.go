package infra

// pdf.go renders thermal-receipt-sized PDFs with go-pdf/fpdf:
//   - sale receipts for PAID sales
//   - cash shift close reports
//
// Files are written to storagePath and the absolute path is returned.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"naxospos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const receiptWidth = 74.0 // mm, close to thermal paper

func newReceiptDoc(height float64) (*fpdf.Fpdf, float64) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	return pdf, receiptWidth - 8
}

func writeDoc(pdf *fpdf.Fpdf, storagePath, fileName string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath, err := filepath.Abs(filepath.Join(storagePath, fileName))
	if err != nil {
		return "", fmt.Errorf("pdf: resolve path: %w", err)
	}
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func separator(pdf *fpdf.Fpdf) {
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), receiptWidth-4, pdf.GetY())
	pdf.Ln(2)
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// GenerateReceiptPDF renders the receipt of a PAID sale. Items should have
// Variant.Product and Flavor preloaded; missing relations print as blank.
func GenerateReceiptPDF(sale *model.Sale, businessName, storagePath string) (string, error) {
	// 60mm of header/footer plus one row per line and payment
	height := 60 + 5*float64(len(sale.Items)+len(sale.Payments))
	pdf, contentW := newReceiptDoc(height)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Venta N° %d", sale.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	stamp := sale.OpenedAt
	if sale.PaidAt != nil {
		stamp = *sale.PaidAt
	}
	pdf.CellFormat(contentW, 4, stamp.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	separator(pdf)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := itemLabel(item)
		if len(name) > 22 {
			name = name[:21] + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "x"+item.Quantity.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(item.LineTotal), "", 1, "R", false, 0, "")
	}
	separator(pdf)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, money(sale.Subtotal), "", 1, "R", false, 0, "")
	if !sale.Tax.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Impuestos:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, money(sale.Tax), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, money(sale.Total), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range sale.Payments {
		pdf.CellFormat(col1+col2, 4, "Pago ("+p.Method.Tender()+"):", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, money(p.Amount), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	return writeDoc(pdf, storagePath, fmt.Sprintf("venta_%d.pdf", sale.ID))
}

func itemLabel(item model.SaleItem) string {
	name := ""
	if item.Variant != nil {
		if item.Variant.Product != nil {
			name = item.Variant.Product.Name + " "
		}
		name += item.Variant.VariantName
	}
	if item.Flavor != nil {
		name += " " + item.Flavor.Name
	}
	return name
}

// GenerateShiftReportPDF renders the close report of a cash shift.
func GenerateShiftReportPDF(shift *model.CashShift, summary *model.CashShiftSummary, difference string, businessName, storagePath string) (string, error) {
	pdf, contentW := newReceiptDoc(130)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	half := contentW / 2

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	row := func(label, value string) {
		pdf.CellFormat(half, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 5, tr(value), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 7)
	row("Turno", fmt.Sprintf("#%d", shift.ID))
	row("Sucursal", fmt.Sprintf("#%d", shift.LocationID))
	row("Apertura", shift.OpenedAt.Format("02/01/2006 15:04"))
	closedAt := time.Time{}
	if shift.ClosedAt != nil {
		closedAt = *shift.ClosedAt
	}
	row("Cierre", closedAt.Format("02/01/2006 15:04"))
	separator(pdf)

	row("Ventas", fmt.Sprintf("%d", summary.TotalOrders))
	row("Efectivo", money(summary.TotalCash))
	row("Tarjeta", money(summary.TotalCard))
	row("Transferencia", money(summary.TotalTransfer))
	row("Otro", money(summary.TotalOther))
	pdf.SetFont("Helvetica", "B", 8)
	row("Total", money(summary.TotalSales))
	separator(pdf)

	pdf.SetFont("Helvetica", "", 7)
	row("Fondo inicial", money(shift.OpeningFloat))
	if shift.ClosingCashCounted != nil {
		row("Efectivo contado", money(*shift.ClosingCashCounted))
	}
	pdf.SetFont("Helvetica", "B", 8)
	row("Diferencia", difference)

	return writeDoc(pdf, storagePath, fmt.Sprintf("cierre_turno_%d.pdf", shift.ID))
}
