// Package pdf genera el comprobante imprimible de un traslado entre ubicaciones.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Comprobante de traslado  │  N° DIST + Fecha + Estado│
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: nombre / tipo            │  DESTINO: nombre / tipo  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MATERIAL: SKU | Nombre | Cant | Costo unit | Total         │
//	│  SALDOS: origen antes/después  |  destino antes/después     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LIBRO: entradas generadas (tipo, ubicación, cantidad)      │
//	│  FOOTER: QR con el número + firmas entrega / recibe         │
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

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.SlipGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.SlipGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDistributionSlip genera el PDF del traslado y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDistributionSlip(ctx context.Context, slip *inventory.DistributionSlip) ([]byte, error) {
	if slip == nil || slip.Distribution == nil {
		return nil, fmt.Errorf("pdf: traslado vacío")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := slip.Distribution

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de traslado "+d.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(locationsRow(slip.From, slip.To))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(materialHeaderRow())
	m.AddRows(materialRow(d, slip.Material))
	m.AddRows(balancesRow(d))

	if len(slip.Transactions) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(ledgerHeaderRow())
		for _, r := range ledgerRows(slip.Transactions, slip.From, slip.To) {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(d))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y número, fecha y estado (der).
func headerRow(d *entity.Distribution) core.Row {
	status := text.New("Estado: "+d.Status, props.Text{
		Size: 8, Align: align.Right, Top: 14, Color: colorGray,
	})
	if d.IsCancelled() {
		status = text.New("CANCELADO", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 14, Color: colorDanger,
		})
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Movimiento de inventario entre ubicaciones", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(d.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+d.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			status,
		),
	)
}

func locationsRow(from, to *entity.Location) core.Row {
	block := func(title string, l *entity.Location) core.Col {
		name, detail := "-", ""
		if l != nil {
			name = l.Name
			detail = l.Type
			if l.Address != "" {
				detail += "   |   " + l.Address
			}
		}
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(block("ORIGEN", from), block("DESTINO", to))
}

func materialHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Material", 4, align.Left),
		h("Cantidad", 2, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func materialRow(d *entity.Distribution, m *entity.RawMaterial) core.Row {
	sku, name := "", d.MaterialID
	if m != nil {
		sku, name = m.SKU, m.Name
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	return row.New(7).Add(
		cell(nonEmpty(sku, "-"), 2, align.Left),
		cell(name, 4, align.Left),
		cell(quantity(d.Quantity)+" "+d.Unit, 2, align.Right),
		cell("$"+money(d.CostPrice), 2, align.Right),
		cell("$"+money(d.TotalCost), 2, align.Right),
	)
}

// balancesRow: saldos antes/después registrados al crear el traslado.
func balancesRow(d *entity.Distribution) core.Row {
	balance := func(title string, before, after decimal.Decimal) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 2}),
			text.New(fmt.Sprintf("%s -> %s", quantity(before), quantity(after)), props.Text{Size: 9, Top: 7}),
		)
	}
	return row.New(14).Add(
		balance("SALDO ORIGEN", d.FromBefore, d.FromAfter),
		balance("SALDO DESTINO", d.ToBefore, d.ToAfter),
	)
}

func ledgerHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Fecha", 3, align.Left),
		h("Ubicación", 4, align.Left),
		h("Tipo", 2, align.Left),
		h("Cantidad", 3, align.Right),
	)
}

// ledgerRows: una fila por entrada del libro ligada al traslado (incluye las de cancelación).
func ledgerRows(txs []*entity.StockTransaction, from, to *entity.Location) []core.Row {
	names := map[string]string{}
	for _, l := range []*entity.Location{from, to} {
		if l != nil {
			names[l.ID] = l.Name
		}
	}
	rows := make([]core.Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(t.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 7})),
			col.New(4).Add(text.New(nonEmpty(names[t.LocationID], t.LocationID), props.Text{Size: 7})),
			col.New(2).Add(text.New(t.Kind, props.Text{Size: 7})),
			col.New(3).Add(text.New(quantity(t.SignedQuantity()), props.Text{Size: 7, Align: align.Right})),
		))
	}
	return rows
}

// footerRow: QR con el número del traslado y espacio para firmas.
func footerRow(d *entity.Distribution) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(d.Number, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Entrega: ______________________________", props.Text{Size: 9, Top: 8, Left: 3}),
			text.New("Recibe:  ______________________________", props.Text{Size: 9, Top: 20, Left: 3}),
			text.New(d.Notes, props.Text{Size: 7, Top: 30, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func quantity(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// money redondea a pesos e inserta puntos de miles. Ej: 1000000 → "1.000.000".
func money(d decimal.Decimal) string {
	s := d.StringFixed(0)
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
