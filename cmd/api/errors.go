package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/cart"
	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/checkout"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/order"
	"github.com/MikeMC777/tienda-ecom/internal/product"
	"github.com/MikeMC777/tienda-ecom/internal/user"
	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// writeError maps domain errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	if v, ok := validation.As(err); ok {
		httpx.Invalid(c, http.StatusBadRequest, v)
		return
	}
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, cart.ErrProductNotFound):
		httpx.Invalid(c, http.StatusBadRequest, validation.Errors{"product": {"product does not exist"}})
	case errors.Is(err, user.ErrAlreadyExist):
		httpx.Invalid(c, http.StatusConflict, validation.Errors{"email": {"user with this email already exists"}})
	case errors.Is(err, category.ErrAlreadyExist):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongType),
		errors.Is(err, auth.ErrRevoked):
		httpx.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrProductWithoutSeller),
		errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, checkout.ErrTotalTooLarge):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		rid, _ := c.Get("rid")
		log.Printf("[http] rid=%v %s %s error: %v", rid, c.Request.Method, c.Request.URL.Path, err)
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}

// idParam reads the :id path parameter. Every row is keyed by a UUID, so any
// other value is answered with 404 before it reaches the database.
func idParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.Error(c, http.StatusNotFound, "not found")
		return "", false
	}
	return id, true
}
