// Package xlsx lee planillas de catálogo (.xlsx) para la carga inicial de medicamentos y lotes.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Columnas esperadas en la primera hoja, en este orden. La primera fila es el encabezado.
var CatalogHeader = []string{
	"categoria", "medicamento", "presentacion", "unidades_por_empaque", "stock_minimo",
	"fabricante", "generico", "lote", "vencimiento", "costo", "mrp", "stock",
}

// CatalogRow una fila de la planilla. Sin Lote la fila solo da de alta el medicamento.
type CatalogRow struct {
	Row           int // número de fila en la hoja (1-based)
	Category      string
	Medicine      string
	PackingType   string
	UnitsPerPack  int
	MinStockLevel int
	Manufacturer  string
	GenericName   string
	BatchNumber   string
	ExpiryDate    string // YYYY-MM-DD
	PurchasePrice *decimal.Decimal
	MRP           decimal.Decimal
	Stock         int
}

// HasBatch indica si la fila trae un lote.
func (r CatalogRow) HasBatch() bool { return r.BatchNumber != "" }

// ReadCatalog lee la primera hoja del libro. Las filas vacías se ignoran; una celda numérica
// mal escrita devuelve error indicando fila y columna.
func ReadCatalog(r io.Reader) ([]CatalogRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]CatalogRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		rowNo := i + 2
		cell := func(col int) string {
			if col < len(cells) {
				return strings.TrimSpace(cells[col])
			}
			return ""
		}
		if cell(1) == "" {
			continue
		}
		row := CatalogRow{
			Row:          rowNo,
			Category:     cell(0),
			Medicine:     cell(1),
			PackingType:  cell(2),
			Manufacturer: cell(5),
			GenericName:  cell(6),
			BatchNumber:  cell(7),
			ExpiryDate:   cell(8),
		}
		if row.UnitsPerPack, err = intCell(cell(3), 1); err != nil {
			return nil, cellError(rowNo, 3, err)
		}
		if row.MinStockLevel, err = intCell(cell(4), 0); err != nil {
			return nil, cellError(rowNo, 4, err)
		}
		if row.HasBatch() {
			if c := cell(9); c != "" {
				cost, err := decimal.NewFromString(c)
				if err != nil {
					return nil, cellError(rowNo, 9, err)
				}
				row.PurchasePrice = &cost
			}
			if row.MRP, err = decimal.NewFromString(cell(10)); err != nil {
				return nil, cellError(rowNo, 10, err)
			}
			if row.Stock, err = intCell(cell(11), 0); err != nil {
				return nil, cellError(rowNo, 11, err)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// WriteCatalog escribe filas en el formato que ReadCatalog entiende (plantilla para la carga).
func WriteCatalog(w io.Writer, rows []CatalogRow) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(CatalogHeader))
	for i, h := range CatalogHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cost := ""
		if r.PurchasePrice != nil {
			cost = r.PurchasePrice.String()
		}
		values := []any{
			r.Category, r.Medicine, r.PackingType, r.UnitsPerPack, r.MinStockLevel,
			r.Manufacturer, r.GenericName, r.BatchNumber, r.ExpiryDate, cost, r.MRP.String(), r.Stock,
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func intCell(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func cellError(row, col int, err error) error {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return fmt.Errorf("celda %s (%s): %w", name, CatalogHeader[col], err)
}
