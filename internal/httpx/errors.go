package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ValidationError lists the messages collected per field.
// swagger:model
type ValidationError struct {
	Errors map[string][]string `json:"errors"`
}

func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, HTTPError{Error: msg})
}

func Invalid(c *gin.Context, status int, v validation.Errors) {
	c.AbortWithStatusJSON(status, ValidationError{Errors: v})
}
