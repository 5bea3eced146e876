package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sproutify/sproutify-platform/internal/api/middleware"
	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	service "github.com/sproutify/sproutify-platform/internal/services"
	"github.com/sproutify/sproutify-platform/internal/utils"
	"github.com/sproutify/sproutify-platform/internal/utils/response"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

// ListProducts godoc
//	@Summary		List products
//	@Description	Returns a page of products, optionally narrowed by keyword, category and price range.
//	@Tags			Products
//	@Produce		json
//	@Param			keyword		query		string	false	"Case-insensitive name search"
//	@Param			category	query		string	false	"Category filter; 'All' disables it"
//	@Param			minPrice	query		number	false	"Lower price bound (inclusive)"
//	@Param			maxPrice	query		number	false	"Upper price bound (inclusive)"
//	@Param			pageNumber	query		int		false	"Page number (default: 1)"
//	@Success		200			{object}	models.ProductListResponse
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		filter := &models.ProductFilter{
			Keyword:  r.URL.Query().Get("keyword"),
			Category: r.URL.Query().Get("category"),
		}

		if page, err := strconv.Atoi(r.URL.Query().Get("pageNumber")); err == nil && page > 0 {
			filter.Page = page
		}

		if raw := r.URL.Query().Get("minPrice"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				filter.MinPrice = &v
			}
		}

		if raw := r.URL.Query().Get("maxPrice"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				filter.MaxPrice = &v
			}
		}

		resp, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, resp)
	}
}

// TopProducts godoc
//	@Summary	List the featured carousel products
//	@Tags		Products
//	@Produce	json
//	@Success	200	{array}	models.Product
//	@Router		/products/top [get]
func (h *ProductHandler) TopProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		products, err := h.productService.TopProducts(r.Context())
		if err != nil {
			logger.Error("Failed to list top products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

// GetProduct godoc
//	@Summary	Get a product by ID
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID (UUID)"	Format(uuid)
//	@Success	200	{object}	models.Product
//	@Failure	400	{object}	response.ErrorResponse	"Invalid product ID format"
//	@Failure	404	{object}	response.ErrorResponse	"Product not found"
//	@Router		/products/{id} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

// CreateProduct inserts a sample product for the operator to edit. Admin only.
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), claims)
		if err != nil {
			logger.Error("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

// UpdateProduct replaces the editable fields of a product. Admin only.
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update product input")
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, product)
	}
}

// DeleteProduct removes a product from the catalog. Admin only.
func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Failed to delete product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, map[string]string{"message": "Product removed"})
	}
}

// CreateReview godoc
//	@Summary		Review a product
//	@Description	Records the caller's rating and comment for a product. A user may review a product once; subsequent attempts return 409.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Product ID (UUID)"	Format(uuid)
//	@Param			review	body		models.CreateReviewRequest	true	"Rating (1-5) and comment"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		409		{object}	response.ErrorResponse	"Product already reviewed"
//	@Security		BearerAuth
//	@Router			/products/{id}/reviews [post]
func (h *ProductHandler) CreateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid review input")
			return
		}

		if err := h.productService.AddReview(r.Context(), id, claims, &req); err != nil {
			logger.Error("Failed to add review", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Review added", slog.String("productId", id.String()), slog.String("userId", claims.UserID.String()))
		response.Success(w, http.StatusCreated, map[string]string{"message": "Review added"})
	}
}

// UpdateReview rewrites the caller's existing review of a product.
func (h *ProductHandler) UpdateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid review input")
			return
		}

		if err := h.productService.UpdateReview(r.Context(), id, claims, &req); err != nil {
			logger.Error("Failed to update review", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Review updated"})
	}
}
