// Package sandbox is a self-contained marketplace backend implementing the
// same endpoint contract the client package talks to. It backs integration
// tests and local development without a staging deployment.
package sandbox

import (
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/inspitereno-lang/entebhoomi/internal/config"
)

// Server hosts the sandbox HTTP API.
type Server struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

// New connects the database, runs migrations and wires every route.
func New(cfg *config.Config) (*Server, error) {
	db, err := Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "EnteBhoomi Sandbox",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())

	s := &Server{app: app, db: db, cfg: cfg}
	s.registerRoutes()
	return s, nil
}

// DB exposes the underlying database handle for seeding and tests.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Listen serves on the given address until the app is shut down.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Listener serves on an existing listener. Tests bind to 127.0.0.1:0 and
// pass the listener in.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	telegram := NewTelegramService(s.cfg.TelegramBotToken, s.cfg.TelegramAdminChat)

	authHandler := NewAuthHandler(s.db, s.cfg)
	productHandler := NewProductHandler(s.db)
	cartHandler := NewCartHandler(s.db)
	wishlistHandler := NewWishlistHandler(s.db)
	profileHandler := NewProfileHandler(s.db)
	orderHandler := NewOrderHandler(s.db, s.cfg, telegram)
	landownerHandler := NewLandownerHandler(s.db, telegram)

	auth := authMiddleware(s.cfg.JWTSecret)

	user := s.app.Group("/user")
	user.Post("/request-otp", authHandler.RequestOTP)
	user.Post("/verify-otp", authHandler.VerifyOTP)
	user.Get("/getUser", auth, profileHandler.GetUser)
	user.Put("/", auth, profileHandler.UpdateUser)
	user.Post("/address", auth, profileHandler.CreateAddress)
	user.Put("/address/:id", auth, profileHandler.UpdateAddress)
	user.Delete("/address/:id", auth, profileHandler.DeleteAddress)
	user.Patch("/address/default/:id", auth, profileHandler.SetDefaultAddress)

	s.app.Get("/products", productHandler.ListProducts)
	s.app.Get("/products/:id", productHandler.GetProduct)
	s.app.Get("/stores", productHandler.ListStores)
	s.app.Get("/stores/:id", productHandler.GetStore)

	cart := s.app.Group("/cart", auth)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/", cartHandler.AddToCart)
	cart.Put("/update/:productId", cartHandler.UpdateQuantity)

	likes := s.app.Group("/likes", auth)
	likes.Get("/", wishlistHandler.List)
	likes.Post("/", wishlistHandler.Add)
	likes.Delete("/:productId", wishlistHandler.Remove)

	order := s.app.Group("/order", auth)
	order.Post("/", orderHandler.CreateOrder)
	order.Get("/", orderHandler.ListOrders)
	order.Get("/payment", orderHandler.PaymentKey)
	order.Post("/verify", orderHandler.VerifyPayment)
	order.Post("/payment-failed", orderHandler.PaymentFailed)
	order.Put("/:orderId/product/:productId", orderHandler.UpdateOrderItem)

	s.app.Post("/landowner/enquiry", landownerHandler.SubmitEnquiry)
}

// errorHandler renders every error in the envelope shape clients expect.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		msg = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"msg":     msg,
	})
}
