package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// CategoryRequest alta o edición de categoría.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryResponse categoría con su número de medicamentos.
type CategoryResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	MedicineCount int       `json:"medicine_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// MedicineRequest alta o edición de medicamento.
type MedicineRequest struct {
	Name          string `json:"name"`
	CategoryID    int64  `json:"category_id"`
	PackingType   string `json:"packing_type"`
	UnitsPerPack  int    `json:"units_per_pack"`
	Manufacturer  string `json:"manufacturer"`
	GenericName   string `json:"generic_name"`
	MinStockLevel int    `json:"min_stock_level"`
}

// MedicineListRequest filtros del listado de medicamentos.
type MedicineListRequest struct {
	CategoryID int64  `query:"category_id"`
	Search     string `query:"search"`
	Stock      string `query:"stock"` // low | out | ok
}

// MedicineResponse medicamento con sus campos derivados de stock.
type MedicineResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	PackingType   string          `json:"packing_type"`
	UnitsPerPack  int             `json:"units_per_pack"`
	Manufacturer  string          `json:"manufacturer"`
	GenericName   string          `json:"generic_name"`
	MinStockLevel int             `json:"min_stock_level"`
	IsActive      bool            `json:"is_active"`
	TotalStock    int             `json:"total_stock"`
	IsLowStock    bool            `json:"is_low_stock"`
	IsOutOfStock  bool            `json:"is_out_of_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	Batches       []BatchResponse `json:"batches,omitempty"`
}

// BatchRequest alta de lote.
type BatchRequest struct {
	MedicineID    int64            `json:"medicine_id"`
	BatchNumber   string           `json:"batch_number"`
	ExpiryDate    string           `json:"expiry_date"` // YYYY-MM-DD
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal  `json:"mrp"`
	StockQuantity int              `json:"stock_quantity"`
}

// BatchUpdateRequest edición de lote. StockQuantity ausente deja el stock como está.
type BatchUpdateRequest struct {
	ExpiryDate    string           `json:"expiry_date"` // YYYY-MM-DD
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal  `json:"mrp"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
}

// BatchResponse lote con sus campos derivados evaluados a la fecha actual.
type BatchResponse struct {
	ID              int64            `json:"id"`
	MedicineID      int64            `json:"medicine_id"`
	MedicineName    string           `json:"medicine_name,omitempty"`
	BatchNumber     string           `json:"batch_number"`
	ExpiryDate      string           `json:"expiry_date"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	MRP             decimal.Decimal  `json:"mrp"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	StockQuantity   int              `json:"stock_quantity"`
	StockValue      decimal.Decimal  `json:"stock_value"`
	IsActive        bool             `json:"is_active"`
	IsExpired       bool             `json:"is_expired"`
	IsExpiringSoon  bool             `json:"is_expiring_soon"`
	DaysUntilExpiry int              `json:"days_until_expiry"`
}

// CategoryFromEntity convierte a DTO.
func CategoryFromEntity(c *entity.Category, medicineCount int) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		MedicineCount: medicineCount,
		CreatedAt:     c.CreatedAt,
	}
}

// BatchFromEntity convierte a DTO evaluando vencimiento contra today.
func BatchFromEntity(b *entity.Batch, today time.Time) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		MedicineID:      b.MedicineID,
		MedicineName:    b.MedicineName(),
		BatchNumber:     b.BatchNumber,
		ExpiryDate:      b.ExpiryDate.Format(DateLayout),
		PurchasePrice:   b.PurchasePrice,
		MRP:             b.MRP,
		UnitPrice:       b.UnitPrice().Round(2),
		StockQuantity:   b.StockQuantity,
		StockValue:      b.StockValue().Round(2),
		IsActive:        b.IsActive,
		IsExpired:       b.IsExpired(today),
		IsExpiringSoon:  b.IsExpiringSoon(today),
		DaysUntilExpiry: b.DaysUntilExpiry(today),
	}
}

// BatchesFromEntities convierte una lista de lotes.
func BatchesFromEntities(batches []*entity.Batch, today time.Time) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, BatchFromEntity(b, today))
	}
	return out
}

// MedicineFromEntity convierte a DTO. withBatches incluye los lotes cargados.
func MedicineFromEntity(m *entity.Medicine, today time.Time, withBatches bool) MedicineResponse {
	r := MedicineResponse{
		ID:            m.ID,
		Name:          m.Name,
		CategoryID:    m.CategoryID,
		CategoryName:  m.CategoryName(),
		PackingType:   m.PackingType,
		UnitsPerPack:  m.UnitsPerPack,
		Manufacturer:  m.Manufacturer,
		GenericName:   m.GenericName,
		MinStockLevel: m.MinStockLevel,
		IsActive:      m.IsActive,
		TotalStock:    m.TotalStock(),
		IsLowStock:    m.IsLowStock(),
		IsOutOfStock:  m.IsOutOfStock(),
		StockValue:    m.StockValue().Round(2),
	}
	if withBatches {
		r.Batches = BatchesFromEntities(m.Batches, today)
	}
	return r
}

// MedicinesFromEntities convierte una lista de medicamentos sin lotes.
func MedicinesFromEntities(meds []*entity.Medicine, today time.Time) []MedicineResponse {
	out := make([]MedicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, MedicineFromEntity(m, today, false))
	}
	return out
}
