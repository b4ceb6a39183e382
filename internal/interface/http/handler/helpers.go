package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
)

func getAdminID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(middleware.ContextAdminIDKey)
	if !exists {
		return uuid.Nil, errors.New("adminID не найден в контексте")
	}

	adminID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("некорректный формат adminID")
	}

	return adminID, nil
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
