// Package forms преобразует сырые поля формы в типизированные значения.
// Контракт: некорректное или отсутствующее значение превращается в nil
// (значение "отсутствует"), никогда не возвращается ошибка.
package forms

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	formatDDMMYYYY = "02/01/2006"
	formatYYYYMMDD = "2006-01-02"
)

// Values оборачивает значения разобранной формы (multipart или
// urlencoded) и даёт типизированный доступ к полям.
type Values struct {
	form url.Values
}

func New(form url.Values) Values {
	return Values{form: form}
}

// String возвращает строковое значение поля, пустую строку при отсутствии.
func (v Values) String(name string) string {
	return v.form.Get(name)
}

// Int разбирает поле как целое. nil при отсутствии или мусоре.
func (v Values) Int(name string) *int {
	raw := strings.TrimSpace(v.form.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// IntOr — как Int, но с явным значением по умолчанию.
func (v Values) IntOr(name string, def int) int {
	if n := v.Int(name); n != nil {
		return *n
	}
	return def
}

// Date разбирает поле как дату: сначала dd/mm/yyyy, затем yyyy-mm-dd.
// nil, если ни один формат не подошёл.
func (v Values) Date(name string) *time.Time {
	raw := strings.TrimSpace(v.form.Get(name))
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(formatDDMMYYYY, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(formatYYYYMMDD, raw); err == nil {
		return &t
	}
	return nil
}

// StringPtr возвращает nil для отсутствующего поля и указатель на
// значение (включая пустую строку) для присутствующего.
func (v Values) StringPtr(name string) *string {
	if _, ok := v.form[name]; !ok {
		return nil
	}
	s := v.form.Get(name)
	return &s
}

// List возвращает все значения повторяющегося поля.
func (v Values) List(name string) []string {
	return v.form[name]
}
