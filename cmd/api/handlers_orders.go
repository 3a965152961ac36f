package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/checkout"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/order"
)

// @Summary      Checkout
// @Description  Places one order per seller in the cart and empties the cart. Nothing is written when any line fails.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkout.Request  true  "shipping address"
// @Success      201   {array}   order.Order
// @Failure      400   {object}  httpx.HTTPError
// @Router       /checkout [post]
func checkoutHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.Request
		if !httpx.BindJSON(c, &in) {
			return
		}
		orders, err := svc.Checkout(c.Request.Context(), httpx.MustPrincipal(c).UserID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, orders)
	}
}

// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "page size (max 100)"  default(12)
// @Param        offset  query  int  false  "offset"                default(0)
// @Success      200     {array}  order.Order
// @Router       /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		out, err := svc.ListForBuyer(c.Request.Context(), httpx.MustPrincipal(c).UserID, limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary      Get my order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "order id"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.HTTPError
// @Router       /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		o, err := svc.GetForBuyer(c.Request.Context(), httpx.MustPrincipal(c).UserID, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary      List my sales
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "page size (max 100)"  default(12)
// @Param        offset  query  int  false  "offset"                default(0)
// @Success      200     {array}  order.Order
// @Router       /dashboard/sales [get]
func listSalesHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		out, err := svc.ListSales(c.Request.Context(), httpx.MustPrincipal(c).UserID, limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary      Get a sale
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "order id"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.HTTPError
// @Router       /dashboard/sales/{id} [get]
func getSaleHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		o, err := svc.GetSale(c.Request.Context(), httpx.MustPrincipal(c).UserID, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary      Update sale status
// @Description  PENDING to PROCESSING or CANCELLED, PROCESSING to SHIPPED or CANCELLED, SHIPPED to DELIVERED. Cancelling restocks the items.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "order id"
// @Param        body  body      order.UpdateStatusRequest  true  "new status"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  httpx.ValidationError
// @Failure      404   {object}  httpx.HTTPError
// @Failure      409   {object}  httpx.HTTPError
// @Router       /dashboard/sales/{id} [patch]
func updateSaleStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in order.UpdateStatusRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), httpx.MustPrincipal(c).UserID, id, in.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
