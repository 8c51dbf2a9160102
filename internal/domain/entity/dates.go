package entity

import "time"

// DateOf devuelve la fecha calendario de t (hora descartada) como medianoche UTC.
// Todas las comparaciones por día del dominio pasan por aquí.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween devuelve los días calendario de from a to (negativo si to es anterior).
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
