package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/cart"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
)

// @Summary      List cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  cart.ItemResponse
// @Router       /cart [get]
func listCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), httpx.MustPrincipal(c).UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]cart.ItemResponse, len(items))
		for i, it := range items {
			out[i] = it.Response()
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary      Add to cart
// @Description  Adds to the existing row for the product when there is one.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cart.AddItemRequest  true  "product and quantity"
// @Success      201   {object}  cart.ItemResponse
// @Success      200   {object}  cart.ItemResponse
// @Failure      400   {object}  httpx.ValidationError
// @Router       /cart [post]
func addCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddItemRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		it, created, err := svc.Add(c.Request.Context(), httpx.MustPrincipal(c).UserID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, it.Response())
	}
}

// @Summary      Update cart item
// @Description  Sets the quantity; zero or less removes the row.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "cart item id"
// @Param        body  body      cart.UpdateItemRequest  true  "quantity"
// @Success      200   {object}  cart.ItemResponse
// @Success      204
// @Failure      404   {object}  httpx.HTTPError
// @Router       /cart/{id} [patch]
func updateCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in cart.UpdateItemRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		it, removed, err := svc.Update(c.Request.Context(), httpx.MustPrincipal(c).UserID, id, *in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		if removed {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, it.Response())
	}
}

// @Summary      Remove cart item
// @Tags         cart
// @Security     BearerAuth
// @Param        id   path  string  true  "cart item id"
// @Success      204
// @Failure      404  {object}  httpx.HTTPError
// @Router       /cart/{id} [delete]
func deleteCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Remove(c.Request.Context(), httpx.MustPrincipal(c).UserID, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
