package valueobject

import "strings"

type Locale string

const (
	LocaleDE Locale = "de"
	LocaleEN Locale = "en"

	DefaultLocale = LocaleDE
)

func (l Locale) IsValid() bool {
	return l == LocaleDE || l == LocaleEN
}

// Other возвращает вторую поддерживаемую локаль (используется как fallback в каталоге).
func (l Locale) Other() Locale {
	if l == LocaleEN {
		return LocaleDE
	}
	return LocaleEN
}

// ParseLocale принимает "de", "en", "de-CH", "en_US" и т.п.
func ParseLocale(raw string) (Locale, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) > 2 {
		raw = raw[:2]
	}
	l := Locale(raw)
	return l, l.IsValid()
}

// LocaleFromAcceptLanguage выбирает первую поддерживаемую локаль из заголовка Accept-Language.
func LocaleFromAcceptLanguage(header string, fallback Locale) Locale {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if l, ok := ParseLocale(tag); ok {
			return l
		}
	}
	return fallback
}
