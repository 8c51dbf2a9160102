package sales

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos atados a ella.
// Si fn devuelve error se hace rollback y no queda ningún cambio persistido.
// La implementación puede reintentar fn completa ante conflictos de concurrencia.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptHeader datos del negocio impresos en el comprobante.
type ReceiptHeader struct {
	PharmacyName string
	Address      string
	Phone        string
}

// ReceiptGenerator genera el comprobante de una venta (PDF).
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale, header ReceiptHeader) ([]byte, error)
}
