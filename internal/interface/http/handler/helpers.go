package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/http/middleware"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
)

func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDValue, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errors.New("userID не найден в контексте")
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("некорректный формат userID")
	}

	return userID, nil
}

func getRole(c *gin.Context) valueobject.Role {
	role, _ := c.Get(middleware.ContextRoleKey)
	r, _ := role.(valueobject.Role)
	return r
}

// paramUUID берёт path-параметр из UUIDValidator или разбирает сам;
// при ошибке ответ уже отправлен.
func paramUUID(c *gin.Context, name, message string) (uuid.UUID, bool) {
	if id, ok := middleware.ParamUUID(c, name); ok {
		return id, true
	}
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
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
