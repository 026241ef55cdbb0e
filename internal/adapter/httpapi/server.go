package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bodicode/foodfund-backend/internal/usecase/disbursement"
	"github.com/bodicode/foodfund-backend/internal/usecase/request"
	"github.com/bodicode/foodfund-backend/internal/usecase/wallet"
)

// Server wires the usecase services to the HTTP surface
type Server struct {
	RequestService      *request.Service
	DisbursementService *disbursement.Service
	WalletService       *wallet.Service
	Logger              *zap.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(
	requestService *request.Service,
	disbursementService *disbursement.Service,
	walletService *wallet.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		RequestService:      requestService,
		DisbursementService: disbursementService,
		WalletService:       walletService,
		Logger:              logger,
	}
}

// App builds the fiber application with middleware and routes
func (s *Server) App(apiToken string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "foodfund-backend",
		DisableStartupMessage: true,
	})

	app.Use(RequestLogger(s.Logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1", AuthMiddleware(apiToken))

	v1.Post("/phase-plans/validate", s.handleValidatePhasePlan)

	v1.Post("/operation-requests", s.handleCreateOperationRequest)
	v1.Patch("/operation-requests/:id/status", s.handleUpdateOperationRequestStatus)
	v1.Get("/operation-requests/stats", s.handleOperationRequestStats)
	v1.Get("/operation-requests", s.handleListOperationRequests)

	v1.Post("/ingredient-requests", s.handleCreateIngredientRequest)
	v1.Patch("/ingredient-requests/:id/status", s.handleUpdateIngredientRequestStatus)
	v1.Get("/ingredient-requests/stats", s.handleIngredientRequestStats)
	v1.Get("/ingredient-requests", s.handleListIngredientRequests)

	v1.Post("/inflow-transactions", s.handleCreateDisbursement)
	v1.Get("/inflow-transactions/:id", s.handleGetDisbursement)
	v1.Get("/inflow-transactions", s.handleListDisbursements)

	v1.Get("/wallets/me/stats", s.handleMyWalletStats)
	v1.Get("/wallets/:ownerId", s.handleGetWalletWithTransactions)
	v1.Get("/wallets", s.handleListWallets)

	return app
}
