package main

import (
	"context"
	"fmt"
	"log"

	"guardian-engine-go/internal/common"
	"guardian-engine-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	_, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("Guardian Engine Setup", common.DefaultWidth)

	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Printf("Catalog:  %d guardians, %d evolution stages\n",
		len(services.Registry.Guardians()), len(services.Registry.Stages()))

	guardians := services.Registry.Guardians()
	for i, g := range guardians {
		prefix := common.BoxPrefix(i == len(guardians)-1)
		fmt.Printf("%s %-15s tier %d  attribute %-6s unlock %dE\n",
			prefix, g.Name, g.Tier, g.Attribute, g.Unlock.EnergyCost)
	}

	common.PrintFooter("Setup complete. Schema is ready.", common.DefaultWidth)
}
