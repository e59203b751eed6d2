// Package month содержит арифметику календарных месяцев для отчётов дашборда.
package month

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ErrInvalidMonth возвращается для месяца вне диапазона 1..12 или года вне 1970..9999.
var ErrInvalidMonth = errors.New("invalid month")

// Validate проверяет пару год/месяц из запроса.
func Validate(year, month int) error {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return ErrInvalidMonth
	}
	return nil
}

// Bounds возвращает полуинтервал [from, to) месяца в UTC.
func Bounds(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// Previous возвращает предыдущий месяц, переходя через границу года.
func Previous(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// Of возвращает год и месяц момента t в зоне loc.
func Of(t time.Time, loc *time.Location) (int, int) {
	y, m, _ := t.In(loc).Date()
	return y, int(m)
}

// FromQuery читает параметры year и month. Отсутствующий параметр берётся из
// текущего месяца (defYear, defMonth).
func FromQuery(q url.Values, defYear, defMonth int) (int, int, error) {
	year, mon := defYear, defMonth
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: year %q", ErrInvalidMonth, v)
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: month %q", ErrInvalidMonth, v)
		}
		mon = n
	}
	if err := Validate(year, mon); err != nil {
		return 0, 0, err
	}
	return year, mon, nil
}
