// Package pdf genera el comprobante de venta de la farmacia con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Farmacia + dirección │ N° comprobante + fecha      │
//	│  CLIENTE: nombre + teléfono                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | Lote | P.Unit | Subtotal        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL A PAGAR                                               │
//	│  FOOTER: QR de la referencia + leyenda                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"golang.org/x/text/number"

	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

var _ sales.ReceiptGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los importes se formatean en español.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateReceiptPDF genera el comprobante de la venta y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, sale *entity.Sale, header sales.ReceiptHeader) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(nonEmpty(header.PharmacyName, "Farmacia"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale, header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(sale)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: farmacia (izq) y número de comprobante + fecha (der).
func headerRow(sale *entity.Sale, header sales.ReceiptHeader) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(header.PharmacyName, "Farmacia"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s", nonEmpty(header.Address, "-"), nonEmpty(header.Phone, "-")), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.SaleDate.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente; ambos campos son opcionales.
func customerRow(sale *entity.Sale) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s",
				nonEmpty(sale.CustomerName, "Consumidor final"),
				nonEmpty(sale.CustomerPhone, "-"),
			), props.Text{Size: 9, Top: 6}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Lote", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// itemRows: una fila por línea de la venta.
func (g *MarotoPDFGenerator) itemRows(items []*entity.SaleItem) []core.Row {
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		batch := "-"
		if it.Batch != nil {
			batch = it.Batch.BatchNumber
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.DisplayName(), props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(batch, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(g.money(it.PriceAtSale), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(it.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// totalRow: total y unidades alineados a la derecha.
func (g *MarotoPDFGenerator) totalRow(sale *entity.Sale) core.Row {
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			text.New("Unidades:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 1}),
			text.New("TOTAL A PAGAR:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 7, Color: colorPrimary}),
		),
		col.New(3).Add(
			text.New(fmt.Sprintf("%d", sale.ItemCount()), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}),
			text.New(g.money(sale.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 7, Color: colorPrimary}),
		),
	)
}

// footerRows: QR con la referencia de la venta y leyenda.
func footerRows(sale *entity.Sale) []core.Row {
	rows := []core.Row{}
	if sale.Reference != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(sale.Reference, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Referencia de la venta:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3}),
				text.New(sale.Reference, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
				text.New("Presente este código para cambios o devoluciones.", props.Text{Size: 8, Top: 20, Left: 3, Color: colorGray}),
			),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Gracias por su compra. Conserve este comprobante.", props.Text{
			Size: 7, Color: colorGray, Top: 2, Align: align.Center,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea un importe con separadores locales y dos decimales. Ej: 25000 → "$25.000,00".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return "$" + g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
