package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// LedgerUseCase consultas sobre ventas confirmadas: listado, detalle, rentabilidad y comprobante.
type LedgerUseCase struct {
	saleRepo repository.SaleRepository
	receipts ReceiptGenerator
	header   ReceiptHeader
}

// NewLedgerUseCase construye el caso de uso. receipts puede ser nil si no se generan PDFs.
func NewLedgerUseCase(saleRepo repository.SaleRepository, receipts ReceiptGenerator, header ReceiptHeader) *LedgerUseCase {
	return &LedgerUseCase{saleRepo: saleRepo, receipts: receipts, header: header}
}

// List devuelve ventas por fecha descendente, opcionalmente de un solo día.
func (uc *LedgerUseCase) List(ctx context.Context, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	in.DefaultPage()
	filter := repository.SaleFilter{Limit: in.PerPage, Offset: in.Offset()}
	if d := strings.TrimSpace(in.Date); d != "" {
		day, err := time.Parse(dto.DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, d)
		}
		filter.Date = &day
	}
	list, total, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Sales: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Page: in.Page, PerPage: in.PerPage, Total: total},
	}
	for _, s := range list {
		out.Sales = append(out.Sales, dto.SaleFromEntity(s, false))
	}
	return out, nil
}

// Get devuelve la venta con sus líneas.
func (uc *LedgerUseCase) Get(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	r := dto.SaleFromEntity(sale, true)
	return &r, nil
}

// Profit calcula la rentabilidad de la venta y de cada línea.
func (uc *LedgerUseCase) Profit(ctx context.Context, id int64) (*dto.SaleProfitResponse, error) {
	sale, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleProfitResponse{
		SaleID: sale.ID,
		Total:  dto.ProfitFromDomain(pharmacy.SaleProfit(sale.Items)),
		Items:  make([]dto.ItemProfitDTO, 0, len(sale.Items)),
	}
	for _, it := range sale.Items {
		out.Items = append(out.Items, dto.ItemProfitDTO{
			SaleItemID: it.ID,
			Name:       it.DisplayName(),
			Quantity:   it.Quantity,
			ProfitDTO:  dto.ProfitFromDomain(pharmacy.ItemProfit(it)),
		})
	}
	return out, nil
}

// Receipt genera el comprobante PDF de la venta.
func (uc *LedgerUseCase) Receipt(ctx context.Context, id int64) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("generador de comprobantes no configurado")
	}
	sale, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReceiptPDF(ctx, sale, uc.header)
}

func (uc *LedgerUseCase) load(ctx context.Context, id int64) (*entity.Sale, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id de venta inválido", domain.ErrInvalidInput)
	}
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}
