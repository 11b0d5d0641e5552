package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"
	"marketplace/internal/services"
	"marketplace/internal/storage"
	"marketplace/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Image{},
		&models.Favorite{},
		&models.Message{},
		&models.Order{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// The chat relay and order events degrade gracefully without a broker:
	// services treat a nil client as "persist only".
	var mqClient *rabbitmq.Client
	mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		logrus.Printf("RabbitMQ unavailable, live chat relay disabled: %v", err)
		mqClient = nil
	} else {
		defer mqClient.Close()
	}

	// --- File storage ---
	fileStore := storage.NewDiskStore(cfg.UploadDir)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	imageRepo := repositories.NewGORMImageRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	userService := services.NewUserService(userRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	itemService := services.NewItemService(itemRepo, categoryRepo, imageRepo, fileStore)
	favoriteService := services.NewFavoriteService(favoriteRepo, itemRepo)
	messageService := services.NewMessageService(messageRepo, userRepo, itemRepo, mqClient)
	vippsClient := payment.NewVippsClient(payment.Config{
		BaseURL:              cfg.Vipps.BaseURL,
		MerchantSerialNumber: cfg.Vipps.MerchantSerialNumber,
		SubscriptionKey:      cfg.Vipps.SubscriptionKey,
		ClientID:             cfg.Vipps.ClientID,
		ClientSecret:         cfg.Vipps.ClientSecret,
		CallbackPrefix:       cfg.Vipps.CallbackPrefix,
		FallbackPrefix:       cfg.Vipps.FallbackPrefix,
		Timeout:              cfg.Vipps.Timeout,
	})
	orderService := services.NewOrderService(orderRepo, itemRepo, vippsClient, mqClient)

	seedCategories(categoryService)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, userService)
	userInfoHandler := handlers.NewUserInfoHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	itemHandler := handlers.NewItemHandler(itemService, favoriteService, userService)
	messageHandler := handlers.NewMessageHandler(messageService)
	chatHandler := handlers.NewChatHandler(authService, messageService, mqClient)
	vippsHandler := handlers.NewVippsHandler(orderService)
	imageHandler := handlers.NewImageHandler(fileStore)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	app.Static("/uploads", fileStore.Dir())

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, authRequired)
	userInfoHandler.RegisterRoutes(api, authRequired)
	userHandler.RegisterRoutes(api, authRequired, adminRequired)
	categoryHandler.RegisterRoutes(api, authRequired, adminRequired)
	itemHandler.RegisterRoutes(api, authRequired)
	messageHandler.RegisterRoutes(api, authRequired)
	vippsHandler.RegisterRoutes(api, authRequired)
	imageHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			logrus.Println("Starting RabbitMQ consumer for orders...")
			eventHandler := func(msg amqp.Delivery) error {
				logrus.Printf("Received Order Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeOrderEvents(eventHandler); consumerErr != nil {
				logrus.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	logrus.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	logrus.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logrus.Printf("Error during Fiber shutdown: %v", err)
	}

	logrus.Println("Server gracefully stopped")
}

// seedCategories makes sure the default categories exist on startup.
func seedCategories(categoryService *services.CategoryService) {
	names := []string{"Sport", "Electronics", "Furniture", "Clothing", "Books", "Other"}
	for _, name := range names {
		if _, err := categoryService.EnsureCategory(name); err != nil {
			logrus.Printf("Error seeding category %s: %v", name, err)
		}
	}
}
