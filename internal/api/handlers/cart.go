package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sproutify/sproutify-platform/internal/api/middleware"
	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	service "github.com/sproutify/sproutify-platform/internal/services"
	"github.com/sproutify/sproutify-platform/internal/utils"
	"github.com/sproutify/sproutify-platform/internal/utils/response"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// GetCart godoc
//	@Summary		Get the authenticated user's cart
//	@Description	Returns the stored cart items. A user who never saved a cart gets an empty list.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartResponse
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized cart access attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		items, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to fetch cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.CartResponse{CartItems: items})
	}
}

// ReplaceCart godoc
//	@Summary		Replace the authenticated user's cart
//	@Description	Overwrites the stored cart with the submitted items, creating it on first write. The item list may be empty.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			cart	body		models.ReplaceCartRequest	true	"Full cart contents"
//	@Success		200		{object}	models.CartResponse
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart [put]
func (h *CartHandler) ReplaceCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
		if !ok {
			logger.Warn("Unauthorized cart write attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.ReplaceCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cart input")
			return
		}

		items, err := h.cartService.ReplaceCart(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to replace cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart replaced", slog.String("userId", claims.UserID.String()), slog.Int("items", len(items)))
		response.Success(w, http.StatusOK, models.CartResponse{CartItems: items})
	}
}
