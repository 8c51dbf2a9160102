package entity

import "time"

// Category agrupa medicamentos por forma farmacéutica (Tableta, Jarabe, ...).
// No se puede eliminar mientras tenga medicamentos asociados.
type Category struct {
	ID          int64
	Name        string // único
	Description string
	CreatedAt   time.Time
}
