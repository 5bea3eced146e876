package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/api/handlers"
	appErrors "github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/sproutify/sproutify-platform/internal/services/mocks"
	"github.com/sproutify/sproutify-platform/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupOrderTest() (*mocks.OrderService, *handlers.OrderHandler) {
	mockOrderService := new(mocks.OrderService)
	orderHandler := handlers.NewOrderHandler(mockOrderService)

	return mockOrderService, orderHandler
}

func validCreateOrderBody(productID uuid.UUID) []byte {
	body, _ := json.Marshal(models.CreateOrderRequest{
		OrderItems: []models.OrderItem{
			{ProductID: productID, Quantity: 2},
		},
		ShippingAddress: &models.Address{
			Address:    "12 Fern Way",
			City:       "Portland",
			PostalCode: "97201",
			Country:    "USA",
		},
		PaymentMethod: "PayPal",
	})

	return body
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("Success - Order Created", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		productID := uuid.New()
		req, claims := createAuthenticatedRequest("POST", "/api/orders", validCreateOrderBody(productID))
		recorder := httptest.NewRecorder()

		created := &models.Order{
			ID:         uuid.New(),
			UserID:     claims.UserID,
			Status:     models.OrderStatusPending,
			TotalPrice: 1380,
		}
		mockOrderService.On("CreateOrder", mock.Anything, claims, mock.AnythingOfType("*models.CreateOrderRequest")).
			Return(created, nil).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(recorder.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		req := createAnonymousRequest("POST", "/api/orders", validCreateOrderBody(uuid.New()))
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		mockOrderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Missing Shipping Address", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		body, _ := json.Marshal(models.CreateOrderRequest{
			OrderItems:    []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
			PaymentMethod: "PayPal",
		})
		req, _ := createAuthenticatedRequest("POST", "/api/orders", body)
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		mockOrderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Insufficient Stock", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		req, claims := createAuthenticatedRequest("POST", "/api/orders", validCreateOrderBody(uuid.New()))
		recorder := httptest.NewRecorder()

		mockOrderService.On("CreateOrder", mock.Anything, claims, mock.AnythingOfType("*models.CreateOrderRequest")).
			Return(nil, appErrors.BadRequestError("Insufficient stock")).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		mockOrderService.AssertExpectations(t)
	})
}

func TestGetOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		orderID := uuid.New()
		req, claims := createAuthenticatedRequest("GET", "/api/orders/"+orderID.String(), nil)
		req.SetPathValue("id", orderID.String())
		recorder := httptest.NewRecorder()

		mockOrderService.On("GetOrderByID", mock.Anything, orderID, claims).
			Return(&models.Order{ID: orderID, UserID: claims.UserID}, nil).Once()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid ID", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		req, _ := createAuthenticatedRequest("GET", "/api/orders/not-a-uuid", nil)
		req.SetPathValue("id", "not-a-uuid")
		recorder := httptest.NewRecorder()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		mockOrderService.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Foreign Order", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		orderID := uuid.New()
		req, claims := createAuthenticatedRequest("GET", "/api/orders/"+orderID.String(), nil)
		req.SetPathValue("id", orderID.String())
		recorder := httptest.NewRecorder()

		mockOrderService.On("GetOrderByID", mock.Anything, orderID, claims).
			Return(nil, appErrors.ForbiddenError("You don't have permission to access this order")).Once()

		// Act
		orderHandler.GetOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(recorder.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, appErrors.ErrCodeForbidden, resp.Error.Code)
	})
}

func TestPayOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		orderID := uuid.New()
		body, _ := json.Marshal(models.PayOrderRequest{ID: "PAYID-1", Status: "COMPLETED"})
		req, claims := createAuthenticatedRequest("PUT", "/api/orders/"+orderID.String()+"/pay", body)
		req.SetPathValue("id", orderID.String())
		recorder := httptest.NewRecorder()

		mockOrderService.On("PayOrder", mock.Anything, orderID, claims, mock.AnythingOfType("*models.PayOrderRequest")).
			Return(&models.Order{ID: orderID, UserID: claims.UserID, IsPaid: true}, nil).Once()

		// Act
		orderHandler.PayOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Already Paid", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		orderID := uuid.New()
		body, _ := json.Marshal(models.PayOrderRequest{ID: "PAYID-2", Status: "COMPLETED"})
		req, claims := createAuthenticatedRequest("PUT", "/api/orders/"+orderID.String()+"/pay", body)
		req.SetPathValue("id", orderID.String())
		recorder := httptest.NewRecorder()

		mockOrderService.On("PayOrder", mock.Anything, orderID, claims, mock.AnythingOfType("*models.PayOrderRequest")).
			Return(nil, appErrors.ConflictError("Order cannot be paid in its current state")).Once()

		// Act
		orderHandler.PayOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusConflict, recorder.Code)
		mockOrderService.AssertExpectations(t)
	})
}

func TestCancelOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		orderID := uuid.New()
		req, claims := createAuthenticatedRequest("PUT", "/api/orders/"+orderID.String()+"/cancel", nil)
		req.SetPathValue("id", orderID.String())
		recorder := httptest.NewRecorder()

		mockOrderService.On("CancelOrder", mock.Anything, orderID, claims).
			Return(&models.Order{ID: orderID, UserID: claims.UserID, Status: models.OrderStatusCancelled}, nil).Once()

		// Act
		orderHandler.CancelOrder()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		mockOrderService.AssertExpectations(t)
	})
}

func TestListMyOrdersHandler(t *testing.T) {
	t.Run("Success - Empty History", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest()
		req, claims := createAuthenticatedRequest("GET", "/api/orders/myorders", nil)
		recorder := httptest.NewRecorder()

		mockOrderService.On("ListMyOrders", mock.Anything, claims.UserID).
			Return([]models.Order{}, nil).Once()

		// Act
		orderHandler.ListMyOrders()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(recorder.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		mockOrderService.AssertExpectations(t)
	})
}
