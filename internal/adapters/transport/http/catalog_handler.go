package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/app/dto"
	catalogService "github.com/kilnworks/brickline/internal/app/catalog/service"
	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

type CatalogHandler struct {
	svc catalogService.CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc catalogService.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

func (h *CatalogHandler) List(c *gin.Context) {
	params := searchParamsFromQuery(c)

	page, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	params.Normalize()
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    "Products retrieved successfully",
		Data:       page.Products,
		Pagination: NewPagination(params.Page, params.Limit, page.Total),
	})
}

func (h *CatalogHandler) Search(c *gin.Context) {
	params := searchParamsFromQuery(c)

	page, err := h.svc.Search(c.Request.Context(), params)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	params.Normalize()
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    "Products retrieved successfully",
		Data:       page.Products,
		Pagination: NewPagination(params.Page, params.Limit, page.Total),
	})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Product retrieved successfully",
		Data:    product,
	})
}

func (h *CatalogHandler) ByCategory(c *gin.Context) {
	category := c.Param("category")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := h.svc.ByCategory(c.Request.Context(), category, limit)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Products in category '" + category + "' retrieved successfully",
		Data:    products,
	})
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Categories retrieved successfully",
		Data:    categories,
	})
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var body dto.CreateProductDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var body dto.UpdateProductDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

func (h *CatalogHandler) UpdateStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var body dto.UpdateStockDTO
	if err := c.ShouldBindJSON(&body); err != nil || body.Stock == nil || *body.Stock < 0 {
		fail(c, http.StatusBadRequest, "Invalid stock value")
		return
	}

	if err := h.svc.UpdateStock(c.Request.Context(), id, *body.Stock); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Stock updated successfully",
	})
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Product deleted successfully",
	})
}

func searchParamsFromQuery(c *gin.Context) model.SearchParams {
	params := model.SearchParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
		SortDesc: c.DefaultQuery("sortOrder", "DESC") != "ASC",
	}

	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		params.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		params.MaxPrice = &v
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	return params
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
