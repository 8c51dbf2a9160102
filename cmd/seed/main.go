// seed carga el catálogo inicial (categorías, medicamentos y lotes) en PostgreSQL
// a partir de una planilla .xlsx, o un catálogo de demostración si no se indica archivo.
//
// Uso:
//
//	go run ./cmd/seed                           # catálogo de demostración
//	go run ./cmd/seed --file catalogo.xlsx      # importar planilla
//	go run ./cmd/seed --template plantilla.xlsx # escribir plantilla con el catálogo de demostración
//
// Las filas ya cargadas (mismo medicamento activo o mismo lote) se omiten, por lo que puede
// ejecutarse varias veces.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

func main() {
	file := pflag.String("file", "", "planilla .xlsx a importar")
	template := pflag.String("template", "", "escribir plantilla .xlsx y salir")
	pflag.Parse()

	if *template != "" {
		if err := writeTemplate(*template); err != nil {
			fmt.Fprintf(os.Stderr, "Escribir plantilla: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Plantilla escrita en %s\n", *template)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("seed")

	rows := demoCatalog(time.Now())
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("abrir planilla")
		}
		rows, err = xlsx.ReadCatalog(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("leer planilla")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}

	categoryRepo := postgres.NewCategoryRepository(pool)
	medicineRepo := postgres.NewMedicineRepository(pool)
	imp := &importer{
		categories: catalog.NewCategoryUseCase(categoryRepo),
		medicines:  catalog.NewMedicineUseCase(medicineRepo, categoryRepo),
		batches:    catalog.NewBatchUseCase(postgres.NewBatchRepository(pool), medicineRepo, log),
		log:        log,
	}
	stats, err := imp.run(ctx, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("importar catálogo")
	}
	log.Info().
		Int("filas", len(rows)).
		Int("medicamentos", stats.medicines).
		Int("lotes", stats.batches).
		Int("omitidas", stats.skipped).
		Int("errores", stats.failed).
		Msg("catálogo cargado")
}

func writeTemplate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.WriteCatalog(f, demoCatalog(time.Now())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type importStats struct {
	medicines, batches, skipped, failed int
}

type importer struct {
	categories *catalog.CategoryUseCase
	medicines  *catalog.MedicineUseCase
	batches    *catalog.BatchUseCase
	log        *logger.Logger

	categoryIDs map[string]int64
	medicineIDs map[string]int64
}

func (imp *importer) run(ctx context.Context, rows []xlsx.CatalogRow) (importStats, error) {
	var stats importStats
	existing, err := imp.categories.List(ctx)
	if err != nil {
		return stats, err
	}
	imp.categoryIDs = make(map[string]int64, len(existing))
	for _, c := range existing {
		imp.categoryIDs[strings.ToLower(c.Name)] = c.ID
	}
	imp.medicineIDs = make(map[string]int64)

	for _, row := range rows {
		created, err := imp.apply(ctx, row, &stats)
		switch {
		case err != nil:
			stats.failed++
			imp.log.Warn().Err(err).Int("fila", row.Row).Str("medicamento", row.Medicine).Msg("fila rechazada")
		case !created:
			stats.skipped++
		}
	}
	return stats, nil
}

// apply carga una fila; created=false cuando ya existía todo lo que la fila describe.
func (imp *importer) apply(ctx context.Context, row xlsx.CatalogRow, stats *importStats) (bool, error) {
	categoryID, err := imp.category(ctx, row.Category)
	if err != nil {
		return false, err
	}
	medicineID, newMedicine, err := imp.medicine(ctx, row, categoryID)
	if err != nil {
		return false, err
	}
	if newMedicine {
		stats.medicines++
	}
	if !row.HasBatch() {
		return newMedicine, nil
	}

	_, err = imp.batches.Create(ctx, dto.BatchRequest{
		MedicineID:    medicineID,
		BatchNumber:   row.BatchNumber,
		ExpiryDate:    row.ExpiryDate,
		PurchasePrice: row.PurchasePrice,
		MRP:           row.MRP,
		StockQuantity: row.Stock,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return newMedicine, nil
	}
	if err != nil {
		return false, err
	}
	stats.batches++
	return true, nil
}

func (imp *importer) category(ctx context.Context, name string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := imp.categoryIDs[key]; ok {
		return id, nil
	}
	c, err := imp.categories.Create(ctx, dto.CategoryRequest{Name: name})
	if err != nil {
		return 0, err
	}
	imp.categoryIDs[key] = c.ID
	return c.ID, nil
}

func (imp *importer) medicine(ctx context.Context, row xlsx.CatalogRow, categoryID int64) (int64, bool, error) {
	key := strings.ToLower(row.Medicine)
	if id, ok := imp.medicineIDs[key]; ok {
		return id, false, nil
	}
	m, err := imp.medicines.Create(ctx, dto.MedicineRequest{
		Name:          row.Medicine,
		CategoryID:    categoryID,
		PackingType:   row.PackingType,
		UnitsPerPack:  row.UnitsPerPack,
		Manufacturer:  row.Manufacturer,
		GenericName:   row.GenericName,
		MinStockLevel: row.MinStockLevel,
	})
	if err == nil {
		imp.medicineIDs[key] = m.ID
		return m.ID, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return 0, false, err
	}
	// ya existe activo: buscarlo por nombre exacto
	found, err := imp.medicines.List(ctx, dto.MedicineListRequest{Search: row.Medicine})
	if err != nil {
		return 0, false, err
	}
	for _, f := range found {
		if strings.EqualFold(f.Name, row.Medicine) {
			imp.medicineIDs[key] = f.ID
			return f.ID, false, nil
		}
	}
	return 0, false, fmt.Errorf("medicamento %q duplicado pero no encontrado", row.Medicine)
}

// demoCatalog catálogo de demostración con vencimientos relativos a now.
func demoCatalog(now time.Time) []xlsx.CatalogRow {
	expiry := func(months int) string { return now.AddDate(0, months, 0).Format(dto.DateLayout) }
	cost := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	mrp := decimal.RequireFromString
	return []xlsx.CatalogRow{
		{Row: 2, Category: "Analgésicos", Medicine: "Paracetamol 500mg", PackingType: "Strip", UnitsPerPack: 10, MinStockLevel: 20,
			Manufacturer: "Genfar", GenericName: "Acetaminofén", BatchNumber: "PA-2401", ExpiryDate: expiry(1), PurchasePrice: cost("1200"), MRP: mrp("2500"), Stock: 40},
		{Row: 3, Category: "Analgésicos", Medicine: "Paracetamol 500mg", PackingType: "Strip", UnitsPerPack: 10, MinStockLevel: 20,
			Manufacturer: "Genfar", GenericName: "Acetaminofén", BatchNumber: "PA-2407", ExpiryDate: expiry(14), PurchasePrice: cost("1250"), MRP: mrp("2500"), Stock: 120},
		{Row: 4, Category: "Analgésicos", Medicine: "Ibuprofeno 400mg", PackingType: "Strip", UnitsPerPack: 10, MinStockLevel: 15,
			Manufacturer: "MK", GenericName: "Ibuprofeno", BatchNumber: "IB-2403", ExpiryDate: expiry(9), PurchasePrice: cost("1800"), MRP: mrp("3500"), Stock: 60},
		{Row: 5, Category: "Antibióticos", Medicine: "Amoxicilina 500mg", PackingType: "Strip", UnitsPerPack: 12, MinStockLevel: 24,
			Manufacturer: "La Santé", GenericName: "Amoxicilina", BatchNumber: "AM-2402", ExpiryDate: expiry(6), PurchasePrice: cost("6000"), MRP: mrp("9600"), Stock: 36},
		{Row: 6, Category: "Jarabes", Medicine: "Jarabe para la tos", PackingType: "Bottle", UnitsPerPack: 1, MinStockLevel: 5,
			Manufacturer: "Tecnoquímicas", BatchNumber: "JT-2312", ExpiryDate: expiry(-1), MRP: mrp("14000"), Stock: 4},
		{Row: 7, Category: "Inyectables", Medicine: "Diclofenaco 75mg", PackingType: "Ampoule", UnitsPerPack: 1, MinStockLevel: 10,
			Manufacturer: "Genfar", GenericName: "Diclofenaco sódico", BatchNumber: "DI-2405", ExpiryDate: expiry(18), PurchasePrice: cost("900"), MRP: mrp("2200"), Stock: 50},
		{Row: 8, Category: "Dermatológicos", Medicine: "Clotrimazol crema 1%", PackingType: "Tube", UnitsPerPack: 1, MinStockLevel: 3,
			Manufacturer: "MK", GenericName: "Clotrimazol"},
	}
}
