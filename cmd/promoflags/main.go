// Command promoflags recomputes derived promotional flags over a snapshot
// of the catalog. Safe to re-run; intended for a cron schedule.
package main

import (
	"context"
	"log"
	"time"

	"tajabazar-be/internal/category"
	"tajabazar-be/internal/config"
	"tajabazar-be/internal/db"
	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/product"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	categorySvc := category.NewService(category.NewRepository(database))
	productSvc := product.NewService(product.NewRepository(database), categorySvc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	refreshed, err := productSvc.RefreshPromotionalFlags(ctx)
	if err != nil {
		log.Fatalf("promo flag refresh failed after %d products: %v", refreshed, err)
	}
	log.Printf("promo flags refreshed for %d products", refreshed)
}
