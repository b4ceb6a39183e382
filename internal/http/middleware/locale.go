package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
)

const ContextLocaleKey = "locale"

// LocaleMiddleware определяет язык запроса: ?locale=, затем Accept-Language, затем fallback.
func LocaleMiddleware(fallback valueobject.Locale) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale, ok := valueobject.ParseLocale(c.Query("locale"))
		if !ok {
			locale = valueobject.LocaleFromAcceptLanguage(c.GetHeader("Accept-Language"), fallback)
		}
		c.Set(ContextLocaleKey, locale)
		c.Next()
	}
}

// LocaleFromContext возвращает язык, выставленный LocaleMiddleware.
func LocaleFromContext(c *gin.Context) valueobject.Locale {
	if v, ok := c.Get(ContextLocaleKey); ok {
		if l, ok := v.(valueobject.Locale); ok {
			return l
		}
	}
	return valueobject.DefaultLocale
}
