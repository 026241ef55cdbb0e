package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bodicode/foodfund-backend/internal/adapter/httpapi"
	"github.com/bodicode/foodfund-backend/internal/adapter/repository/postgres"
	"github.com/bodicode/foodfund-backend/internal/usecase/disbursement"
	"github.com/bodicode/foodfund-backend/internal/usecase/request"
	"github.com/bodicode/foodfund-backend/internal/usecase/wallet"
)

const (
	defaultAPIToken = "dev-token"
	defaultHTTPAddr = ":8080"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		user := envOrDefault("DB_USER", "postgres")
		password := envOrDefault("DB_PASSWORD", "postgres")
		dbname := envOrDefault("DB_NAME", "foodfund")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	operationRepo := postgres.NewOperationRequestRepository(db)
	ingredientRepo := postgres.NewIngredientRequestRepository(db)
	disbursementRepo := postgres.NewDisbursementRepository(db)
	walletRepo := postgres.NewWalletRepository(db)

	// 3. Initialize Services (Use Cases)
	requestService := request.NewService(operationRepo, ingredientRepo)
	disbursementService := disbursement.NewService(disbursementRepo, operationRepo, ingredientRepo, walletRepo)
	walletService := wallet.NewService(walletRepo)

	// 4. Start HTTP Server
	apiToken := envOrDefault("API_TOKEN", defaultAPIToken)
	httpAddr := envOrDefault("HTTP_ADDR", defaultHTTPAddr)

	server := httpapi.NewServer(requestService, disbursementService, walletService, logger)
	app := server.App(apiToken)

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpAddr))
		if err := app.Listen(httpAddr); err != nil {
			logger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
