package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"resumebot-ai/internal/apis/dtos"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CustomRecoveryMiddleware handles panics and returns a proper response DTO
func CustomRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Str("request_id", RequestIDFromContext(c)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				detail := "Internal Server Error"
				if gin.IsDebugging() {
					detail = fmt.Sprintf("Internal Server Error: %v", err)
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, dtos.ErrorResponse{Detail: detail})
			}
		}()
		c.Next()
	}
}
