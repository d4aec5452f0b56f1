package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
)

const contextParamPrefix = "param:"

// UUIDValidator отсекает запросы, у которых path-параметры не являются UUID,
// и кладёт разобранные значения в контекст для ParamUUID.
// Пример: admin.GET("/workers/:id", UUIDValidator("id"), h.GetWorker)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			id, err := uuid.Parse(c.Param(name))
			if err != nil {
				response.BadRequest(c, "параметр "+name+" должен быть валидным UUID")
				return
			}
			c.Set(contextParamPrefix+name, id)
		}
		c.Next()
	}
}

// ParamUUID возвращает значение, уже проверенное UUIDValidator.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	value, ok := c.Get(contextParamPrefix + name)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
