package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/product"
)

const maxImageSize = 5 << 20

// @Summary      List my products
// @Description  Every product of the seller, active or not.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "page size (max 100)"  default(12)
// @Param        offset  query     int  false  "offset"                default(0)
// @Success      200     {object}  product.ListResponse
// @Router       /dashboard/products [get]
func listMyProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		q := product.Query{Limit: limit, Offset: offset}.Normalize()
		items, err := repo.ListBySeller(c.Request.Context(), httpx.MustPrincipal(c).UserID, q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

// @Summary      Get my product
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  product.Product
// @Failure      404  {object}  httpx.HTTPError
// @Router       /dashboard/products/{id} [get]
func getMyProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		p, err := repo.GetForSeller(c.Request.Context(), httpx.MustPrincipal(c).UserID, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary      Create product
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      product.CreateProductRequest  true  "product"
// @Success      201   {object}  product.Product
// @Failure      400   {object}  httpx.ValidationError
// @Router       /dashboard/products [post]
func createProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.CreateProductRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		p, err := svc.Create(c.Request.Context(), httpx.MustPrincipal(c).UserID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary      Update product
// @Description  Partial update; omitted fields are left unchanged.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                        true  "product id"
// @Param        body  body      product.UpdateProductRequest  true  "fields to change"
// @Success      200   {object}  product.Product
// @Failure      400   {object}  httpx.ValidationError
// @Failure      404   {object}  httpx.HTTPError
// @Router       /dashboard/products/{id} [patch]
func updateProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in product.UpdateProductRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		p, err := svc.Update(c.Request.Context(), httpx.MustPrincipal(c).UserID, id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary      Delete product
// @Tags         dashboard
// @Security     BearerAuth
// @Param        id   path  string  true  "product id"
// @Success      204
// @Failure      404  {object}  httpx.HTTPError
// @Router       /dashboard/products/{id} [delete]
func deleteProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), httpx.MustPrincipal(c).UserID, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      Upload product image
// @Tags         dashboard
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "product id"
// @Param        image  formData  file    true  "jpeg, png, webp or gif, up to 5 MB"
// @Success      200    {object}  product.Product
// @Failure      400    {object}  httpx.ValidationError
// @Failure      404    {object}  httpx.HTTPError
// @Router       /dashboard/products/{id}/image [post]
func uploadProductImageHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			httpx.Invalid(c, http.StatusBadRequest, map[string][]string{"image": {"no file was submitted"}})
			return
		}
		if fh.Size > maxImageSize {
			httpx.Invalid(c, http.StatusBadRequest, map[string][]string{"image": {"file is larger than 5 MB"}})
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		defer f.Close()

		p, err := svc.SetImage(c.Request.Context(), httpx.MustPrincipal(c).UserID, id,
			fh.Header.Get("Content-Type"), f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
