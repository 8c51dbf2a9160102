package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
)

// CreateSaleRequest carrito enviado por el punto de venta.
type CreateSaleRequest struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []SaleLineRequest `json:"items"`
}

// SaleLineRequest línea del carrito. Sin batch_id la línea es no listada y usa item_name.
type SaleLineRequest struct {
	BatchID   *int64          `json:"batch_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleListRequest filtros del listado de ventas.
type SaleListRequest struct {
	PageRequest
	Date string `query:"date"` // YYYY-MM-DD, opcional
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	ID            int64              `json:"id"`
	Reference     string             `json:"reference"`
	SaleDate      time.Time          `json:"sale_date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	ItemCount     int                `json:"item_count"`
	Items         []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID          int64           `json:"id"`
	BatchID     *int64          `json:"batch_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Name        string          `json:"name"`
	IsListed    bool            `json:"is_listed"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleListResponse página de ventas.
type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
	Page  PageResponse   `json:"page"`
}

// ProfitDTO ingreso/costo/ganancia. CostKnown=false indica costo no calculable.
type ProfitDTO struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	CostKnown     bool            `json:"cost_known"`
}

// ItemProfitDTO rentabilidad de una línea.
type ItemProfitDTO struct {
	SaleItemID int64  `json:"sale_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	ProfitDTO
}

// SaleProfitResponse rentabilidad de una venta y de cada línea.
type SaleProfitResponse struct {
	SaleID int64           `json:"sale_id"`
	Total  ProfitDTO       `json:"total"`
	Items  []ItemProfitDTO `json:"items"`
}

// SaleFromEntity convierte a DTO; withItems incluye las líneas.
func SaleFromEntity(s *entity.Sale, withItems bool) SaleResponse {
	r := SaleResponse{
		ID:            s.ID,
		Reference:     s.Reference,
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		ItemCount:     s.ItemCount(),
	}
	if withItems {
		r.Items = make([]SaleItemResponse, 0, len(s.Items))
		for _, it := range s.Items {
			ir := SaleItemResponse{
				ID:          it.ID,
				BatchID:     it.BatchID,
				Name:        it.DisplayName(),
				IsListed:    it.IsListed(),
				Quantity:    it.Quantity,
				PriceAtSale: it.PriceAtSale,
				Subtotal:    it.Subtotal(),
			}
			if it.Batch != nil {
				ir.BatchNumber = it.Batch.BatchNumber
			}
			r.Items = append(r.Items, ir)
		}
	}
	return r
}

// ProfitFromDomain convierte el resultado del motor de rentabilidad.
func ProfitFromDomain(p pharmacy.Profit) ProfitDTO {
	return ProfitDTO{
		Revenue:       p.Revenue,
		Cost:          p.Cost.Round(2),
		Profit:        p.Profit.Round(2),
		MarginPercent: pharmacy.MarginPercent(p.Profit, p.Revenue),
		CostKnown:     p.CostKnown,
	}
}
