package main

import (
	"log"
	"net/http"

	"tajabazar-be/internal/category"
	"tajabazar-be/internal/config"
	"tajabazar-be/internal/db"
	"tajabazar-be/internal/handlers"
	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/order"
	"tajabazar-be/internal/product"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo, categorySvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo)

	router := handlers.NewRouter(handlers.Services{
		Orders:     handlers.NewOrderHandlers(orderSvc),
		Categories: handlers.NewCategoryHandlers(categorySvc),
		Products:   handlers.NewProductHandlers(productSvc),
	})

	log.Printf("🚀 API server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
