// Package dateutil concentra a aritmética de datas de calendário usada
// pelas janelas de sincronização e de comparação. Todas as datas são
// normalizadas para meia-noite UTC.
package dateutil

import "time"

// DateOnly trunca t para meia-noite UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date constrói uma data normalizada.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameDayLastMonth retorna o dia equivalente a t no mês anterior, fixado
// no último dia do mês anterior quando este é mais curto. No dia 31 de um
// mês de 31 dias contra um mês de 30, o resultado é o dia 30, nunca uma
// data inválida.
func SameDayLastMonth(t time.Time) time.Time {
	lastMonthStart := FirstOfMonth(t).AddDate(0, -1, 0)
	day := t.Day()
	if max := DaysInMonth(lastMonthStart); day > max {
		day = max
	}
	return Date(lastMonthStart.Year(), lastMonthStart.Month(), day)
}

// MinDate retorna a menor das duas datas.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween retorna cada data do intervalo inclusivo [from, to], em
// ordem crescente. Intervalo invertido retorna nil.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = DateOnly(from), DateOnly(to)
	if from.After(to) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
