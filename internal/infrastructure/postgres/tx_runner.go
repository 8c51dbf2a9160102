package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	log        *logger.Logger
}

// NewTxRunner construye el runner con el pool. maxRetries < 0 se trata como 0.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, log *logger.Logger) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, log: log.Component("tx")}
}

// RunSale ejecuta fn en una transacción con repos atados a ella. Si la base aborta la
// transacción por deadlock o fallo de serialización se reintenta completa; agotados los
// reintentos devuelve un error que envuelve domain.ErrConflict.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
) error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt+1).Msg("transacción de venta abortada por concurrencia, reintentando")
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: la venta no pudo confirmarse por concurrencia: %v", domain.ErrConflict, err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBatchRepository(tx), NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
