// Package i18n отдаёт строки интерфейса и писем для двух локалей.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Catalog: неизменяемый каталог переводов, безопасен для конкурентного чтения.
type Catalog struct {
	messages map[valueobject.Locale]map[string]string
}

// Load читает встроенные каталоги de.yaml и en.yaml.
func Load() (*Catalog, error) {
	c := &Catalog{messages: make(map[valueobject.Locale]map[string]string, 2)}
	for _, locale := range []valueobject.Locale{valueobject.LocaleDE, valueobject.LocaleEN} {
		raw, err := localesFS.ReadFile("locales/" + string(locale) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("i18n: не удалось прочитать каталог %s: %w", locale, err)
		}
		flat, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("i18n: каталог %s: %w", locale, err)
		}
		c.messages[locale] = flat
	}
	return c, nil
}

// MustLoad: Load для main и тестов.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog собирает каталог из готовых плоских словарей.
func NewCatalog(messages map[valueobject.Locale]map[string]string) *Catalog {
	return &Catalog{messages: messages}
}

// T возвращает строку по ключу вида "wizard.contact.title".
// args: пары имя/значение для подстановки {имя}. Если ключа нет,
// используется вторая локаль, затем сам ключ.
func (c *Catalog) T(locale valueobject.Locale, key string, args ...string) string {
	if !locale.IsValid() {
		locale = valueobject.DefaultLocale
	}

	msg, ok := c.messages[locale][key]
	if !ok {
		msg, ok = c.messages[locale.Other()][key]
	}
	if !ok {
		return key
	}

	if len(args) < 2 {
		return msg
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Has сообщает, есть ли ключ в каталоге указанной локали (без fallback).
func (c *Catalog) Has(locale valueobject.Locale, key string) bool {
	_, ok := c.messages[locale][key]
	return ok
}

// Keys возвращает отсортированные ключи локали.
func (c *Catalog) Keys(locale valueobject.Locale) []string {
	keys := make([]string, 0, len(c.messages[locale]))
	for k := range c.messages[locale] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parse(raw []byte) (map[string]string, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flatten("", tree, flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]interface{}:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("ключ %s: ожидалась строка или вложенный объект, получено %T", key, v)
		}
	}
	return nil
}
