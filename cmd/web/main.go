package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/user"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/server"
	"github.com/ops-tools/costpilot/pkg/services/config"
	"github.com/ops-tools/costpilot/pkg/store/execution"
	"github.com/ops-tools/costpilot/pkg/store/object"
	"github.com/ops-tools/costpilot/pkg/store/report"
)

var (
	cfgPath   string
	credsPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the observability server for costpilot",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultCreds := fmt.Sprintf("%s/.aws/credentials", usr.HomeDir)

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "costpilot.yaml",
		"Path to the orchestrator profile")
	rootCmd.Flags().StringVar(&credsPath, "credentials", defaultCreds,
		"Path to the AWS shared credentials file (default is $HOME/.aws/credentials)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	profile, err := config.LoadProfile(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load orchestrator profile: %w", err)
	}

	if registry, err := config.NewRegistry(credsPath); err == nil {
		profiles, _ := registry.GetProfiles(ctx)
		logger.Info().Msgf("Found the following AWS profiles:")
		for _, p := range profiles {
			logger.Info().Msgf("Name: `%s`", p)
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(profile.Region))
	if err != nil {
		return fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	objects, err := object.NewS3Store(s3.NewFromConfig(awsCfg), profile.Bucket)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}
	states, err := execution.NewStore(objects)
	if err != nil {
		return fmt.Errorf("failed to create execution store: %w", err)
	}
	reports, err := report.NewStore(objects)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	addr := net.JoinHostPort(host, port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			States:  states,
			Reports: reports,
		},
	})

	logger.Info().Msgf("starting server on %s", addr)
	if err := api.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
