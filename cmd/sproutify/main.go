package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sproutify/sproutify-platform/internal/api/handlers"
	"github.com/sproutify/sproutify-platform/internal/api/middleware"
	"github.com/sproutify/sproutify-platform/internal/config"
	"github.com/sproutify/sproutify-platform/internal/health"
	"github.com/sproutify/sproutify-platform/internal/metrics"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
	service "github.com/sproutify/sproutify-platform/internal/services"
	"github.com/sproutify/sproutify-platform/internal/telemetry"
	"github.com/sproutify/sproutify-platform/pkg/cloudinary"
	"github.com/sproutify/sproutify-platform/pkg/sendgrid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup; a no-op when no OTLP endpoint is configured
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg)
	if err != nil {
		slog.Error("❌ Error initializing tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("⚠️ Error shutting down tracer", slog.String("error", err.Error()))
		}
	}()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg)

	jwtKey := []byte(cfg.Security.JWTKey)

	var receipts service.ReceiptSender
	if cfg.SendGrid.APIKey != "" {
		receipts = sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	uploader := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset)

	userService := service.NewUserService(repos.User, rateLimiter, jwtKey, cfg.Security.TokenExpiry)
	userHandler := handlers.NewUserHandler(userService)
	productService := service.NewProductService(repos.Product)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.Cart)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.Product, receipts)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminService := service.NewAdminService(repos.User, repos.Product, repos.Order)
	adminHandler := handlers.NewAdminHandler(adminService)
	uploadHandler := handlers.NewUploadHandler(uploader)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/users", userHandler.Register())
	routerMux.HandleFunc("POST /api/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/users/profile", authMiddleware.Authenticate(userHandler.Profile()))

	routerMux.HandleFunc("GET /api/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/products/top", productHandler.TopProducts())
	routerMux.HandleFunc("GET /api/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("POST /api/products", authMiddleware.Authenticate(authMiddleware.RequireAdmin(productHandler.CreateProduct())))
	routerMux.HandleFunc("PUT /api/products/{id}", authMiddleware.Authenticate(authMiddleware.RequireAdmin(productHandler.UpdateProduct())))
	routerMux.HandleFunc("DELETE /api/products/{id}", authMiddleware.Authenticate(authMiddleware.RequireAdmin(productHandler.DeleteProduct())))
	routerMux.HandleFunc("POST /api/products/{id}/reviews", authMiddleware.Authenticate(productHandler.CreateReview()))
	routerMux.HandleFunc("PUT /api/products/{id}/reviews", authMiddleware.Authenticate(productHandler.UpdateReview()))

	routerMux.HandleFunc("GET /api/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("PUT /api/cart", authMiddleware.Authenticate(cartHandler.ReplaceCart()))

	routerMux.HandleFunc("POST /api/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/orders/myorders", authMiddleware.Authenticate(orderHandler.ListMyOrders()))
	routerMux.HandleFunc("GET /api/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("PUT /api/orders/{id}/pay", authMiddleware.Authenticate(orderHandler.PayOrder()))
	routerMux.HandleFunc("PUT /api/orders/{id}/cancel", authMiddleware.Authenticate(orderHandler.CancelOrder()))
	routerMux.HandleFunc("PUT /api/orders/{id}/deliver", authMiddleware.Authenticate(authMiddleware.RequireAdmin(orderHandler.DeliverOrder())))

	routerMux.HandleFunc("POST /api/upload", authMiddleware.Authenticate(authMiddleware.RequireAdmin(uploadHandler.UploadImage())))
	routerMux.HandleFunc("GET /api/admin/stats", authMiddleware.Authenticate(authMiddleware.RequireAdmin(adminHandler.DashboardStats())))

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "sproutify-platform")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}
}
