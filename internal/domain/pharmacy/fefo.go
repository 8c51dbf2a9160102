package pharmacy

import (
	"sort"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// IsAvailable indica si un lote puede ofrecerse para la venta hoy:
// activo, con existencias y no vencido. El vencimiento se evalúa contra today.
func IsAvailable(b *entity.Batch, today time.Time) bool {
	return b.IsActive && b.StockQuantity > 0 && !b.IsExpired(today)
}

// AvailableFEFO filtra los lotes disponibles y los ordena primero-en-vencer-primero-en-salir.
// Empates por vencimiento se ordenan por ID. No modifica el slice de entrada.
func AvailableFEFO(batches []*entity.Batch, today time.Time) []*entity.Batch {
	out := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if IsAvailable(b, today) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := entity.DateOf(out[i].ExpiryDate), entity.DateOf(out[j].ExpiryDate)
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
