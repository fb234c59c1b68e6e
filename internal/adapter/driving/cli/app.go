package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diillson/aws-cost-dashboard-go/internal/application/usecase"
	"github.com/diillson/aws-cost-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-cost-dashboard-go/internal/shared/types"
	"github.com/diillson/aws-cost-dashboard-go/pkg/version"
)

// CostRepositoryFactory abre o armazenamento local de custos.
type CostRepositoryFactory func(databasePath string) (repository.CostRepository, error)

// BillingRepositoryFactory conecta na API de billing.
type BillingRepositoryFactory func(ctx context.Context, profile, region string) (repository.BillingRepository, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	version string

	console        types.ConsoleInterface
	configRepo     repository.ConfigRepository
	exportRepo     repository.ExportRepository
	newCostRepo    CostRepositoryFactory
	newBillingRepo BillingRepositoryFactory
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(
	versionStr string,
	console types.ConsoleInterface,
	configRepo repository.ConfigRepository,
	exportRepo repository.ExportRepository,
	newCostRepo CostRepositoryFactory,
	newBillingRepo BillingRepositoryFactory,
) *CLIApp {
	app := &CLIApp{
		version:        versionStr,
		console:        console,
		configRepo:     configRepo,
		exportRepo:     exportRepo,
		newCostRepo:    newCostRepo,
		newBillingRepo: newBillingRepo,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "aws-cost-dashboard",
		Short:   "Incremental AWS cost dashboard backed by a local store",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "AWS Cost Dashboard version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile to use")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region for the Cost Explorer API")
	rootCmd.PersistentFlags().String("db", "", "Path to the local cost database")
	rootCmd.PersistentFlags().Bool("refresh", false, "Run an incremental sync before showing the dashboard")
	rootCmd.PersistentFlags().Bool("full-sync", false, "Reload the whole configured history window")
	rootCmd.PersistentFlags().Bool("no-credits", false, "Exclude credits (negative cost records) from all totals")
	rootCmd.PersistentFlags().BoolP("watch", "w", false, "Keep running and refresh on the configured interval")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	profile, _ := app.rootCmd.Flags().GetString("profile")
	region, _ := app.rootCmd.Flags().GetString("region")
	databasePath, _ := app.rootCmd.Flags().GetString("db")
	refresh, _ := app.rootCmd.Flags().GetBool("refresh")
	fullSync, _ := app.rootCmd.Flags().GetBool("full-sync")
	noCredits, _ := app.rootCmd.Flags().GetBool("no-credits")
	watch, _ := app.rootCmd.Flags().GetBool("watch")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:   configFile,
		Profile:      profile,
		Region:       region,
		DatabasePath: databasePath,
		Refresh:      refresh,
		FullSync:     fullSync,
		NoCredits:    noCredits,
		Watch:        watch,
		ReportName:   reportName,
		ReportType:   reportType,
		Dir:          dir,
	}

	return args, nil
}

// loadConfig carrega o arquivo de configuração e aplica os overrides
// das flags.
func (app *CLIApp) loadConfig(args *types.CLIArgs) (*types.Config, error) {
	config := types.DefaultConfig()

	if args.ConfigFile != "" {
		loaded, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if args.Profile != "" {
		config.Profile = args.Profile
	}
	if args.Region != "" {
		config.Region = args.Region
	}
	if args.DatabasePath != "" {
		config.DatabasePath = args.DatabasePath
	}
	if args.ReportName != "" {
		config.ReportName = args.ReportName
	}
	if len(args.ReportType) > 0 {
		config.ReportType = args.ReportType
	}
	if args.Dir != "" {
		config.Dir = args.Dir
	}

	return config, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	config, err := app.loadConfig(cliArgs)
	if err != nil {
		return err
	}
	cliArgs.ReportName = config.ReportName
	if len(config.ReportType) > 0 {
		cliArgs.ReportType = config.ReportType
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	costRepo, err := app.newCostRepo(config.DatabasePath)
	if err != nil {
		return err
	}
	defer costRepo.Close()

	billingRepo, err := app.newBillingRepo(ctx, config.Profile, config.Region)
	if err != nil {
		return err
	}

	syncUseCase := usecase.NewSyncUseCase(costRepo, billingRepo, app.console, config.FullSyncDays)
	analysisUseCase := usecase.NewAnalysisUseCase(costRepo)
	dashboardUseCase := usecase.NewDashboardUseCase(analysisUseCase, billingRepo, app.exportRepo, app.console)

	includeCredits := config.ShowCreditsByDefault && !cliArgs.NoCredits

	if cliArgs.Refresh || cliArgs.FullSync || config.RefreshOnStartup {
		if _, err := syncUseCase.Sync(ctx, cliArgs.FullSync); err != nil {
			app.console.LogError("Sync failed: %s", err)
		}
	}

	if err := dashboardUseCase.RunDashboard(ctx, cliArgs, includeCredits); err != nil {
		return err
	}

	if cliArgs.Watch {
		interval := time.Duration(config.RefreshIntervalMinutes) * time.Minute
		scheduler := usecase.NewScheduler(syncUseCase, interval, func() {
			if err := dashboardUseCase.RunDashboard(ctx, cliArgs, includeCredits); err != nil {
				app.console.LogError("Dashboard refresh failed: %s", err)
			}
		})
		app.console.LogInfo("Watching for changes every %d minutes. Press Ctrl+C to exit.", config.RefreshIntervalMinutes)
		scheduler.Run(ctx)
	}

	return nil
}
