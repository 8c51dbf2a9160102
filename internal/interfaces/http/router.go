package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/reports"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *catalog.CategoryUseCase
	MedicineUC *catalog.MedicineUseCase
	BatchUC    *catalog.BatchUseCase
	CommitSale *sales.CommitSaleUseCase
	LedgerUC   *sales.LedgerUseCase
	ReportUC   *reports.ReportUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Altas y ediciones del catálogo: solo personal de farmacia
	staff := RequireRole(jwt.RoleAdmin, jwt.RoleFarmaceutico)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", staff, categoryHandler.Create)
	categories.Put("/:id", staff, categoryHandler.Update)
	categories.Delete("/:id", staff, categoryHandler.Delete)

	// Medicines (search antes de /:id)
	medicines := protected.Group("/medicines")
	medicineHandler := NewMedicineHandler(deps.MedicineUC)
	medicines.Get("/search", medicineHandler.Search)
	medicines.Get("/", medicineHandler.List)
	medicines.Post("/", staff, medicineHandler.Create)
	medicines.Get("/:id", medicineHandler.GetByID)
	medicines.Put("/:id", staff, medicineHandler.Update)
	medicines.Delete("/:id", staff, medicineHandler.Delete)
	medicines.Get("/:id/batches/available", medicineHandler.AvailableBatches)

	// Batches
	batches := protected.Group("/batches", staff)
	batchHandler := NewBatchHandler(deps.BatchUC)
	batches.Post("/", batchHandler.Create)
	batches.Put("/:id", batchHandler.Update)
	batches.Delete("/:id", batchHandler.Delete)

	// Sales (todos los roles)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CommitSale, deps.LedgerUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/profit", saleHandler.Profit)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Reports y dashboard
	reportHandler := NewReportHandler(deps.ReportUC)
	reportGroup := protected.Group("/reports", staff)
	reportGroup.Get("/profit", reportHandler.Profit)
	reportGroup.Get("/dead-stock", reportHandler.DeadStock)
	reportGroup.Get("/margin-alerts", reportHandler.MarginAlerts)
	reportGroup.Get("/sales", reportHandler.Sales)
	reportGroup.Get("/expiry", reportHandler.Expiry)
	reportGroup.Get("/stock", reportHandler.Stock)

	dashboardHandler := NewDashboardHandler(deps.ReportUC)
	protected.Get("/dashboard", staff, dashboardHandler.GetSummary)
}
