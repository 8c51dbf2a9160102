package pharmacy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
)

func TestAvailableFEFO_FiltraYOrdenaPorVencimiento(t *testing.T) {
	today := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		{ID: 1, BatchNumber: "TARDE", ExpiryDate: date(2025, 1, 1), StockQuantity: 10, IsActive: true},
		{ID: 2, BatchNumber: "VENCIDO", ExpiryDate: date(2024, 3, 14), StockQuantity: 10, IsActive: true},
		{ID: 3, BatchNumber: "AGOTADO", ExpiryDate: date(2024, 6, 1), StockQuantity: 0, IsActive: true},
		{ID: 4, BatchNumber: "RETIRADO", ExpiryDate: date(2024, 6, 1), StockQuantity: 5, IsActive: false},
		{ID: 5, BatchNumber: "HOY", ExpiryDate: date(2024, 3, 15), StockQuantity: 1, IsActive: true},
		{ID: 6, BatchNumber: "PRONTO-B", ExpiryDate: date(2024, 4, 1), StockQuantity: 2, IsActive: true},
		{ID: 7, BatchNumber: "PRONTO-A", ExpiryDate: date(2024, 4, 1), StockQuantity: 2, IsActive: true},
	}

	got := pharmacy.AvailableFEFO(batches, today)

	var numbers []string
	for _, b := range got {
		numbers = append(numbers, b.BatchNumber)
	}
	assert.Equal(t, []string{"HOY", "PRONTO-B", "PRONTO-A", "TARDE"}, numbers)
	assert.Len(t, batches, 7, "no debe modificar la entrada")
}

func TestAvailableFEFO_SinLotes(t *testing.T) {
	assert.Empty(t, pharmacy.AvailableFEFO(nil, date(2024, 1, 1)))
}
