// Package main implements the projectgrid CLI: the web frontend server and
// command-line access to the same project actions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/apiclient"
	"dconn.dev/projectgrid/internal/config"
	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/metrics"
	"dconn.dev/projectgrid/internal/services"
	"dconn.dev/projectgrid/internal/session"
)

var (
	// configPath is an optional YAML config file
	configPath string
	// apiURL overrides api.base_url
	apiURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projectgrid",
	Short: "Project gallery frontend for the projects API",
	Long: `projectgrid renders the project gallery served by the projects API.

"serve" runs the web frontend; the other commands perform the same actions
from the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "projects API base URL (overrides config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
}

// app bundles everything a command needs
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	client  *apiclient.Client
	service *services.ProjectService
	// session carries the status of the one action a command performs
	session *session.Session
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	m := metrics.New()
	client, err := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithMaxBodyBytes(cfg.API.MaxBodyBytes),
		apiclient.WithLogger(logger.Named("api")),
		apiclient.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	svcLogger := logger.With(zap.String("component", "projects"))
	svc := services.NewProjectService(client, svcLogger, m)
	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		service: svc,
		session: session.New(cfg.Status.TTL),
	}, nil
}
