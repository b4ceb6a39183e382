package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/response"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Хэндлеры кладут ошибку в c.Error; если ответ ещё не отправлен, он строится здесь.
// Внутренние ошибки маскируются в response.Describe.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, info := response.Describe(err)

		entry := logger.Component("http").WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Debug("Request rejected")
		}

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}
		c.JSON(status, response.Response{Success: false, Error: info})
	}
}
