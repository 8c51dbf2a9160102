package pharmacy

import (
	"strings"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// Tokens de periodo reconocidos.
const (
	PeriodToday     = "today"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodThisMonth = "this_month"
	PeriodLastMonth = "last_month"
	PeriodThisYear  = "this_year"
	PeriodLastYear  = "last_year"
	PeriodCustom    = "custom"
)

// DateLayout formato de fechas explícitas.
const DateLayout = "2006-01-02"

// Period rango de fechas calendario inclusivo [Start, End].
// Fallback indica que se pidió un rango que no se pudo interpretar y se usó hoy.
type Period struct {
	Start    time.Time
	End      time.Time
	Token    string
	Fallback bool
}

// Contains indica si t cae dentro del periodo comparando solo la fecha.
func (p Period) Contains(t time.Time) bool {
	d := entity.DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days número de días calendario del periodo (inclusivo).
func (p Period) Days() int {
	return entity.DaysBetween(p.Start, p.End) + 1
}

// ResolvePeriod traduce un token a fechas concretas relativo a now.
// Tokens desconocidos y rangos custom mal formados caen en hoy (Fallback=true
// para custom inválido); nunca devuelve error.
func ResolvePeriod(token, start, end string, now time.Time) Period {
	today := entity.DateOf(now)
	todayOnly := Period{Start: today, End: today, Token: PeriodToday}

	switch strings.ToLower(strings.TrimSpace(token)) {
	case PeriodToday, "":
		return todayOnly
	case PeriodWeek:
		return Period{Start: today.AddDate(0, 0, -7), End: today, Token: PeriodWeek}
	case PeriodMonth:
		return Period{Start: today.AddDate(0, 0, -30), End: today, Token: PeriodMonth}
	case PeriodThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: first, End: first.AddDate(0, 1, -1), Token: PeriodThisMonth}
	case PeriodLastMonth:
		firstThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: firstThis.AddDate(0, -1, 0), End: firstThis.AddDate(0, 0, -1), Token: PeriodLastMonth}
	case PeriodThisYear:
		return yearPeriod(today.Year(), PeriodThisYear)
	case PeriodLastYear:
		return yearPeriod(today.Year()-1, PeriodLastYear)
	case PeriodCustom:
		s, errS := time.Parse(DateLayout, strings.TrimSpace(start))
		e, errE := time.Parse(DateLayout, strings.TrimSpace(end))
		if errS != nil || errE != nil || s.After(e) {
			todayOnly.Fallback = true
			return todayOnly
		}
		return Period{Start: s, End: e, Token: PeriodCustom}
	default:
		return todayOnly
	}
}

func yearPeriod(year int, token string) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Token: token,
	}
}
