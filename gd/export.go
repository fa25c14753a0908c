package gd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fitdump/garmindump/garmin"
	"github.com/fitdump/garmindump/pkg/output"
	"github.com/mitchellh/go-homedir"
)

// The Garmin client is the production Session implementation
var _ Session = (*garmin.Client)(nil)

// ExportConfig holds all configuration needed for exporting activities
type ExportConfig struct {
	Username        string
	Password        string
	CookiePath      string
	OutputDir       string
	BatchSize       int
	MaxActivities   int
	SkipExisting    bool
	ContinueOnError bool
	JSONMode        bool
}

// Export performs the main export orchestration: authenticate, fetch,
// select, filter, then download and write each surviving activity.
func Export(config ExportConfig) error {
	ol, err := output.New(config.JSONMode)
	if err != nil {
		return fmt.Errorf("failed to create output system: %w", err)
	}
	logger := ol.Component("export")
	presentation := NewPresentationService(ol)

	creds, err := ResolveCredentials(config.Username, config.Password)
	if err != nil {
		presentation.ShowError(err, "Credentials are required. Set GARMIN_USERNAME/GARMIN_PASSWORD or use the flags.")
		return err
	}

	logger.Info("starting export", "username", creds.Username)

	client, err := createAndAuthenticateClient(creds, config.CookiePath, presentation)
	if err != nil {
		return err
	}

	// Pre-flight: make sure this client build can download at all
	downloader, err := NegotiateDownloader(client)
	if err != nil {
		presentation.ShowError(err, "This Garmin client cannot download activities.")
		return err
	}

	// Fetch the activity history
	fetcher := NewActivityFetcher(client, logger)
	fetcher.Progress = func(fetched int) {
		presentation.ShowProgress("Fetched %d activities so far...", fetched)
	}
	activities, err := fetcher.FetchAll(config.BatchSize, config.MaxActivities)
	if err != nil {
		presentation.ShowError(err, "Failed to list activities.")
		return err
	}
	if len(activities) == 0 {
		presentation.ShowStatus("No activities returned by Garmin Connect.")
		return nil
	}
	logger.Info("fetched activities", "count", len(activities))

	// Let the operator narrow down by activity type
	categories := DeriveCategories(activities)
	selection, err := presentation.PromptCategories(categories)
	if err != nil {
		presentation.ShowError(err, "Failed to read type selection.")
		return err
	}

	filtered := FilterByCategory(activities, selection)
	if len(filtered) == 0 {
		presentation.ShowStatus("No activities matched the selected type filters.")
		return nil
	}

	outputDir, err := resolveOutputDir(config.OutputDir)
	if err != nil {
		presentation.ShowError(err, "Failed to resolve output directory %s.", config.OutputDir)
		return err
	}

	service := NewExportService(downloader, NewOSFileSystem(), logger)
	service.OnResult = presentation.ShowActivityResult

	summary, err := service.ExportActivities(filtered, outputDir, config.SkipExisting, config.ContinueOnError)
	if err != nil {
		presentation.ShowError(err, "Export aborted.")
		return err
	}

	presentation.ShowFinalResults(summary, outputDir)
	if config.JSONMode {
		presentation.ShowJSONResults(summary, outputDir)
	}
	logger.Info("export completed",
		"written", summary.Written,
		"skipped", summary.Skipped,
		"missing_id", summary.MissingID,
		"errors", summary.Errors)

	return nil
}

// createAndAuthenticateClient creates a Garmin client and signs it in,
// converting collaborator-boundary errors into terminal messages
func createAndAuthenticateClient(creds Credentials, cookiePath string, presentation *PresentationService) (*garmin.Client, error) {
	client, err := garmin.New(creds.Username, creds.Password, cookiePath)
	if err != nil {
		presentation.ShowError(err, "Failed to create Garmin client.")
		return nil, err
	}

	presentation.ShowProgress("Signing in to Garmin Connect...")
	if err := client.Login(); err != nil {
		switch {
		case errors.Is(err, garmin.ErrAuthenticationFailed):
			presentation.ShowError(err, "Authentication failed. Check your credentials and 2FA settings.")
		case errors.Is(err, garmin.ErrRateLimited), errors.Is(err, garmin.ErrConnectionFailed):
			presentation.ShowError(err, "Unable to connect to Garmin Connect right now.")
		default:
			presentation.ShowError(err, "Sign-in failed.")
		}
		return nil, err
	}

	if err := client.PersistCookies(); err != nil {
		presentation.ShowProgress("Could not persist session cookies: %v", err)
	}

	return client, nil
}

// resolveOutputDir expands and absolutizes the configured output directory
func resolveOutputDir(dir string) (string, error) {
	if dir == "" {
		dir = "./activities"
	}

	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("failed to expand output directory: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return abs, nil
}
