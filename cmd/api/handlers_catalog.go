package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/product"
)

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(product.DefaultLimit)))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// @Summary      List products
// @Description  Active products with stock, newest first.
// @Tags         products
// @Produce      json
// @Param        q         query     string  false  "search in name and description"
// @Param        category  query     string  false  "category slug"
// @Param        limit     query     int     false  "page size (max 100)"  default(12)
// @Param        offset    query     int     false  "offset"                default(0)
// @Success      200       {object}  product.ListResponse
// @Router       /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		q := product.Query{Q: c.Query("q"), Category: c.Query("category"), Limit: limit, Offset: offset}.Normalize()
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Category: q.Category, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  product.Product
// @Failure      404  {object}  httpx.HTTPError
// @Router       /products/{id} [get]
func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		p, err := repo.GetPublic(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}  category.Category
// @Router       /categories [get]
func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      category.CreateCategoryRequest  true  "category"
// @Success      201   {object}  category.Category
// @Failure      403   {object}  httpx.HTTPError
// @Failure      409   {object}  httpx.HTTPError
// @Router       /categories [post]
func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in category.CreateCategoryRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		cat, err := category.New(in)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), cat); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}
