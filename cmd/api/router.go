package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/tienda-ecom/docs"
	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/cart"
	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/checkout"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/order"
	"github.com/MikeMC777/tienda-ecom/internal/product"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

type app struct {
	users      *user.Service
	tokens     *auth.Issuer
	resolver   httpx.PrincipalResolver
	products   product.Repository
	catalog    *product.Service
	categories category.Repository
	cart       *cart.Service
	checkout   *checkout.Service
	orders     *order.Service
	origins    []string
	ping       func(context.Context) error
}

func newRouter(a app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.CORS(a.origins))

	r.GET("/healthz", func(c *gin.Context) {
		if a.ping != nil {
			if err := a.ping(c.Request.Context()); err != nil {
				c.String(http.StatusServiceUnavailable, "db: %v", err)
				return
			}
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", registerHandler(a.users))
	v1.POST("/auth/token", tokenHandler(a.users, a.tokens))
	v1.POST("/auth/token/refresh", refreshHandler(a.users, a.tokens))

	v1.GET("/products", listProductsHandler(a.products))
	v1.GET("/products/:id", getProductHandler(a.products))
	v1.GET("/categories", listCategoriesHandler(a.categories))

	authed := v1.Group("", httpx.Auth(a.resolver))
	authed.POST("/categories", httpx.RequireStaff(), createCategoryHandler(a.categories))

	authed.GET("/profile", getProfileHandler(a.users))
	authed.PATCH("/profile", updateProfileHandler(a.users))
	authed.PUT("/profile", updateProfileHandler(a.users))
	authed.POST("/profile/password", changePasswordHandler(a.users))

	authed.GET("/cart", listCartHandler(a.cart))
	authed.POST("/cart", addCartItemHandler(a.cart))
	authed.PATCH("/cart/:id", updateCartItemHandler(a.cart))
	authed.PUT("/cart/:id", updateCartItemHandler(a.cart))
	authed.DELETE("/cart/:id", deleteCartItemHandler(a.cart))

	authed.POST("/checkout", checkoutHandler(a.checkout))
	authed.GET("/orders", listOrdersHandler(a.orders))
	authed.GET("/orders/:id", getOrderHandler(a.orders))

	dash := authed.Group("/dashboard")
	dash.GET("/products", listMyProductsHandler(a.products))
	dash.POST("/products", createProductHandler(a.catalog))
	dash.GET("/products/:id", getMyProductHandler(a.products))
	dash.PATCH("/products/:id", updateProductHandler(a.catalog))
	dash.PUT("/products/:id", updateProductHandler(a.catalog))
	dash.DELETE("/products/:id", deleteProductHandler(a.catalog))
	dash.POST("/products/:id/image", uploadProductImageHandler(a.catalog))
	dash.GET("/sales", listSalesHandler(a.orders))
	dash.GET("/sales/:id", getSaleHandler(a.orders))
	dash.PATCH("/sales/:id", updateSaleStatusHandler(a.orders))
	return r
}
