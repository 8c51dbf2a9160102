package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/reports"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// storage repositorios y runner de transacciones del driver elegido.
type storage struct {
	categories repository.CategoryRepository
	medicines  repository.MedicineRepository
	batches    repository.BatchRepository
	sales      repository.SaleRepository
	reports    repository.ReportRepository
	txRunner   sales.TxRunner
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Pharmacy.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		cats, meds, batches, saleRepo, reportRepo := store.Repositories()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			categories: cats, medicines: meds, batches: batches, sales: saleRepo, reports: reportRepo,
			txRunner: memory.NewTxRunner(store),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		categories: postgres.NewCategoryRepository(pool),
		medicines:  postgres.NewMedicineRepository(pool),
		batches:    postgres.NewBatchRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		txRunner:   postgres.NewTxRunner(pool, cfg.Pharmacy.TxMaxRetries, log),
		close:      pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Pharmacy.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	categoryUC := catalog.NewCategoryUseCase(store.categories)
	medicineUC := catalog.NewMedicineUseCase(store.medicines, store.categories)
	batchUC := catalog.NewBatchUseCase(store.batches, store.medicines, log)
	commitSaleUC := sales.NewCommitSaleUseCase(store.txRunner, log)

	// PDF: comprobante de venta con QR de la referencia
	receiptHeader := sales.ReceiptHeader{
		PharmacyName: cfg.Pharmacy.Name,
		Address:      cfg.Pharmacy.Address,
		Phone:        cfg.Pharmacy.Phone,
	}
	ledgerUC := sales.NewLedgerUseCase(store.sales, infrapdf.NewMarotoPDFGenerator(), receiptHeader)
	reportUC := reports.NewReportUseCase(
		store.reports, store.medicines, store.batches, store.sales,
		cfg.Pharmacy.DeadStockDays, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmacia API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Pharmacy.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC: categoryUC,
		MedicineUC: medicineUC,
		BatchUC:    batchUC,
		CommitSale: commitSaleUC,
		LedgerUC:   ledgerUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
