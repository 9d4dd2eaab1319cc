package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// LangCodeDefault — язык по умолчанию для переводимых полей.
const LangCodeDefault = "en"

// Translations хранит переводы одного текстового поля по кодам языков,
// например {"en": "Forward", "ru": "Нападающий"}. В базе лежит как JSONB.
type Translations map[string]string

// Resolve возвращает значение для кода языка. Если перевода нет,
// берётся язык по умолчанию, иначе пустая строка. Никогда не паникует.
func (t Translations) Resolve(code string) string {
	if t == nil {
		return ""
	}
	if v, ok := t[code]; ok && v != "" {
		return v
	}
	if v, ok := t[LangCodeDefault]; ok {
		return v
	}
	return ""
}

// Set записывает значение для кода языка, создавая карту при необходимости.
func (t Translations) Set(code, value string) Translations {
	if t == nil {
		t = make(Translations)
	}
	t[code] = value
	return t
}

func (t Translations) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *Translations) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Translations: %T", src)
	}
	if len(data) == 0 {
		*t = nil
		return nil
	}
	if err := json.Unmarshal(data, t); err != nil {
		return errors.New("failed to unmarshal translations json")
	}
	return nil
}
