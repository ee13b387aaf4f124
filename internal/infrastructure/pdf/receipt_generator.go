// Package pdf renders sale receipts with Maroto v2.
//
// A5 layout, sized for counter printing:
//
//	┌───────────────────────────────────────┐
//	│  HEADER: store name │ sale no + date  │
//	│  ───────────────────────────────────  │
//	│  TABLE: Qty | Item | Price | Total    │
//	│  ───────────────────────────────────  │
//	│  TOTAL / PAID / BALANCE DUE           │
//	│  FOOTER: cashier, customer, thanks    │
//	└───────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tindahan/pos-api/internal/application/sales"
)

var (
	colorPrimary = &props.Color{Red: 20, Green: 83, Blue: 45}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// amounts get thousands separators ("1,234.50")
var amountPrinter = message.NewPrinter(language.English)

// MarotoReceiptGenerator implements sales.ReceiptPDFGenerator using Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator builds the generator.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateReceiptPDF renders the receipt and returns its bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(_ context.Context, r *sales.Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "courier", Size: 9}).
		WithTitle("Sale Receipt", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, l := range r.Lines {
		m.AddRows(lineRow(l))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r))

	m.AddRows(line.NewRow(2))
	for _, fr := range footerRows(r) {
		m.AddRows(fr)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate receipt: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: store name (left), sale id tail + timestamp (right).
func headerRow(r *sales.Receipt) core.Row {
	saleNo := r.SaleID
	if len(saleNo) > 8 {
		saleNo = saleNo[:8]
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New(r.StoreName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("OFFICIAL RECEIPT", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Sale #"+saleNo, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New(r.CreatedAt.Format("02 Jan 2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2,
		}))
	}
	return row.New(7).Add(
		h("Qty", 2, align.Left),
		h("Item", 5, align.Left),
		h("Price", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func lineRow(l sales.ReceiptLine) core.Row {
	return row.New(6).Add(
		col.New(2).Add(text.New(
			trimQty(l.Quantity),
			props.Text{Size: 8, Align: align.Left, Top: 1},
		)),
		col.New(5).Add(text.New(
			l.ProductName,
			props.Text{Size: 8, Align: align.Left, Top: 1},
		)),
		col.New(2).Add(text.New(
			formatAmount(l.UnitPrice),
			props.Text{Size: 8, Align: align.Right, Top: 1},
		)),
		col.New(3).Add(text.New(
			formatAmount(l.LineTotal),
			props.Text{Size: 8, Align: align.Right, Top: 1},
		)),
	)
}

// totalsRow: total, paid and — on utang — the balance due.
func totalsRow(r *sales.Receipt) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right})
	}
	labels := []core.Component{label("TOTAL:"), label("PAID:")}
	values := []core.Component{value(formatAmount(r.TotalAmount)), value(formatAmount(r.AmountPaid))}
	if r.Outstanding.IsPositive() {
		labels = append(labels, label("BALANCE DUE:"))
		values = append(values, value(formatAmount(r.Outstanding)))
	}
	return row.New(18).Add(
		col.New(5),
		col.New(4).Add(labels...),
		col.New(3).Add(values...),
	)
}

func footerRows(r *sales.Receipt) []core.Row {
	meta := fmt.Sprintf("Cashier: %s   |   Payment: %s", nonEmpty(r.CashierName, "—"), r.PaymentMethod)
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New(meta, props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)),
	}
	if r.CustomerName != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Customer: "+r.CustomerName, props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Salamat po! Please come again.", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 3,
		}),
	)))
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount renders a money value with thousands separators and two
// decimal places, e.g. 1234.5 -> "1,234.50".
func formatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return amountPrinter.Sprintf("%.2f", f)
}

// trimQty drops trailing zeros so whole quantities print as "3", weighed
// ones as "0.25".
func trimQty(d decimal.Decimal) string {
	return d.String()
}
