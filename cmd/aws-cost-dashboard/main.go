package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/aws-cost-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-dashboard-go/internal/adapter/driven/sqlite"
	"github.com/diillson/aws-cost-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/pkg/console"
	"github.com/diillson/aws-cost-dashboard-go/pkg/version"
)

func main() {
	// Inicializa os adapters compartilhados
	consoleImpl := console.NewConsole()
	configRepo := config.NewConfigRepository()
	exportRepo := export.NewExportRepository()

	// Os repositórios de custo e billing dependem da configuração, então
	// só são abertos depois do parse das flags.
	newCostRepo := func(databasePath string) (repository.CostRepository, error) {
		return sqlite.NewCostRepository(databasePath)
	}
	newBillingRepo := func(ctx context.Context, profile, region string) (repository.BillingRepository, error) {
		return aws.NewBillingRepository(ctx, profile, region)
	}

	app := cli.NewCLIApp(
		version.Version,
		consoleImpl,
		configRepo,
		exportRepo,
		newCostRepo,
		newBillingRepo,
	)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
