package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
)

func TestGenerateReceiptPDF(t *testing.T) {
	batchID := int64(7)
	med := &entity.Medicine{ID: 1, Name: "Paracetamol 500mg", UnitsPerPack: 10}
	sale := &entity.Sale{
		ID:           42,
		Reference:    "5f0c6c1e-8d2a-4c1b-9a57-0f3e2d9a1b11",
		SaleDate:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		TotalAmount:  decimal.RequireFromString("27500"),
		CustomerName: "Ana Gómez",
		Items: []*entity.SaleItem{
			{ID: 1, SaleID: 42, BatchID: &batchID, Quantity: 10, PriceAtSale: decimal.RequireFromString("2500"),
				Batch: &entity.Batch{ID: batchID, BatchNumber: "L-001", Medicine: med}},
			{ID: 2, SaleID: 42, ItemName: "Bolsa", Quantity: 1, PriceAtSale: decimal.RequireFromString("2500")},
		},
	}

	out, err := pdf.NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), sale, sales.ReceiptHeader{
		PharmacyName: "Farmacia Central",
		Address:      "Calle 10 #5-20",
		Phone:        "3001234567",
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateReceiptPDF_VentaSinReferenciaNiCliente(t *testing.T) {
	sale := &entity.Sale{
		ID:          1,
		SaleDate:    time.Now(),
		TotalAmount: decimal.NewFromInt(3),
		Items:       []*entity.SaleItem{{ID: 1, ItemName: "Algodón", Quantity: 1, PriceAtSale: decimal.NewFromInt(3)}},
	}

	out, err := pdf.NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), sale, sales.ReceiptHeader{})

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
