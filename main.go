package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"restaubot/server/internal/api"
	"restaubot/server/internal/config"
	"restaubot/server/internal/database"
	"restaubot/server/internal/models"
	"restaubot/server/internal/services"
	"restaubot/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	// Загрузка конфигурации
	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	} else {
		log.Printf("⚠️ DATABASE_URL не установлен, используется значение по умолчанию")
	}

	// Логируем KAFKA_BROKERS
	if cfg.KafkaBrokers != "" {
		log.Printf("📡 KAFKA_BROKERS установлен: %s", cfg.KafkaBrokers)
	} else {
		log.Printf("⚠️ KAFKA_BROKERS не установлен, события закупок отключены")
	}

	// Подключение к PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Printf("❌ PostgreSQL connection failed: %v", err)
		log.Printf("⚠️ Продолжаем без БД (ограниченная функциональность)")
		db = nil
	} else {
		defer database.ClosePostgres(db)

		// Выполняем миграции
		if err := models.AutoMigrate(db); err != nil {
			log.Printf("❌ Migration failed: %v", err)
			log.Printf("⚠️ Continuing with limited functionality")
		} else {
			log.Println("✅ Database migrations completed")
		}
	}

	// Подключение к Redis
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	var redisUtil *utils.RedisClient
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without Redis)", err)
		redisClient = nil
		redisUtil = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// Kafka producer для событий закупок
	var eventProducer *services.PurchasingEventProducer
	if cfg.KafkaBrokers != "" {
		eventProducer = services.NewPurchasingEventProducer(api.ParseKafkaBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
		defer eventProducer.Close()
		log.Printf("✅ Kafka producer initialized: topic=%s", cfg.KafkaTopic)
	} else {
		log.Println("⚠️ Kafka producer not started: KAFKA_BROKERS not set")
	}

	// Инициализация сервисов закупочного контура
	var purchasingService *services.PurchasingService
	var purchaseOrderService *services.PurchaseOrderService
	if db != nil {
		supplierCacheTTL := time.Duration(cfg.SupplierCacheSeconds) * time.Second
		purchasingService = services.NewPurchasingService(db, redisUtil, eventProducer, supplierCacheTTL)
		purchaseOrderService = services.NewPurchaseOrderService(db, eventProducer)
		log.Println("✅ Purchasing services initialized")
	} else {
		log.Println("⚠️ Purchasing services not started: PostgreSQL not available")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Health check endpoint (должен быть до CORS для Railway)
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "RestauBot Purchasing Server",
			"version": "1.0.0",
		})
	})

	// Логирование всех запросов
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latency: %v", method, path, status, latency)
	})

	// CORS для фронтенда
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Restaurant-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// API routes
	if purchasingService != nil {
		purchasingController := api.NewPurchasingController(purchasingService, cfg)
		orderController := api.NewPurchaseOrderController(purchaseOrderService, cfg)

		purchasingGroup := r.Group("/api/purchasing")
		{
			purchasingGroup.GET("/ingredients", purchasingController.GetIngredients)
			purchasingGroup.GET("/summary", purchasingController.GetSummary)
			purchasingGroup.GET("/ingredients/catalog", purchasingController.GetCatalog)
			purchasingGroup.POST("/ingredients", purchasingController.CreateIngredient)
			purchasingGroup.PUT("/ingredients/:id/stock", purchasingController.UpdateStock)
			purchasingGroup.DELETE("/ingredients/:id", purchasingController.DeleteIngredient)
			purchasingGroup.GET("/menu-items", purchasingController.GetMenuItems)
			purchasingGroup.GET("/menu-items/:id/recipes", purchasingController.GetRecipes)
			purchasingGroup.POST("/recipes", purchasingController.UpsertRecipe)
			purchasingGroup.POST("/sales", purchasingController.RecordSale)
			purchasingGroup.GET("/suppliers", purchasingController.GetSuppliers)
			purchasingGroup.POST("/purchase-orders", orderController.Create)
			purchasingGroup.GET("/purchase-orders/:id", orderController.Get)
			purchasingGroup.GET("/orders", orderController.List)
		}
		log.Println("✅ Purchasing endpoints enabled: /api/purchasing")
	} else {
		log.Println("⚠️ Purchasing endpoints not enabled: PostgreSQL not available")
	}

	// WebSocket дашборда закупок
	r.GET("/ws/dashboard", api.ServeDashboardWS)
	go api.DashboardHub.Run()

	// Kafka -> WebSocket мост для real-time обновлений дашборда
	if cfg.KafkaBrokers != "" {
		feedConsumer := api.NewPurchasingFeedConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaTopic,
			redisUtil,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
			cfg.KafkaCACert,
		)
		feedConsumer.Start()
		defer feedConsumer.Stop()
	} else {
		log.Println("⚠️ Purchasing feed not started: KAFKA_BROKERS not set")
	}

	port := cfg.ServerPort
	log.Printf("🚀 Server starting on port %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
