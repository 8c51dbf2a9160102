package xlsx_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Farmacia-api/internal/infrastructure/xlsx"
)

func TestCatalog_EscribirYLeer(t *testing.T) {
	cost := decimal.RequireFromString("12.5")
	rows := []xlsx.CatalogRow{
		{Category: "Analgésicos", Medicine: "Paracetamol 500mg", PackingType: "Strip", UnitsPerPack: 10, MinStockLevel: 5,
			BatchNumber: "P-1", ExpiryDate: "2026-01-31", PurchasePrice: &cost, MRP: decimal.RequireFromString("20"), Stock: 30},
		{Category: "Curación", Medicine: "Gasas", PackingType: "Tube", UnitsPerPack: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteCatalog(&buf, rows))

	got, err := xlsx.ReadCatalog(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 2, got[0].Row)
	assert.Equal(t, "Paracetamol 500mg", got[0].Medicine)
	assert.True(t, got[0].HasBatch())
	require.NotNil(t, got[0].PurchasePrice)
	assert.True(t, cost.Equal(*got[0].PurchasePrice))
	assert.Equal(t, 30, got[0].Stock)

	assert.False(t, got[1].HasBatch())
	assert.Nil(t, got[1].PurchasePrice)
}

func TestCatalog_NumeroInvalidoIndicaCelda(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"categoria", "medicamento", "presentacion", "unidades_por_empaque"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Jarabes", "Jarabe Tos", "Bottle", "diez"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := xlsx.ReadCatalog(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "D2")
}

func TestCatalog_FilasSinMedicamentoSeIgnoran(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"categoria", "medicamento"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Suelta", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Jarabes", "Jarabe Tos"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := xlsx.ReadCatalog(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Row)
	assert.Equal(t, 1, got[0].UnitsPerPack)
}
