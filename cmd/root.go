package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fitdump/garmindump/gd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	username   string
	password   string
	cookiePath string
	outputDir  string
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "garmindump",
	Short: "A tool to export Garmin Connect activities",
	Long: `Garmindump is a CLI tool to export Garmin Connect activities as FIT files
for analysis and backup purposes.

It signs in to your Garmin Connect account, lists your activity history,
lets you pick which activity types to export, and writes one FIT file per
activity to a local directory.`,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download Garmin activities as FIT files",
	Long:  `Download activities from Garmin Connect, filtered interactively by activity type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		maxActivities, _ := cmd.Flags().GetInt("max-activities")
		skipExisting, _ := cmd.Flags().GetBool("skip-existing")
		continueOnError, _ := cmd.Flags().GetBool("continue-on-error")
		jsonMode, _ := cmd.Flags().GetBool("json")

		if batchSize <= 0 {
			return fmt.Errorf("--batch-size must be a positive integer, got %d", batchSize)
		}
		if maxActivities < 0 {
			return fmt.Errorf("--max-activities must be a positive integer, got %d", maxActivities)
		}

		// Gather configuration from flags and viper
		config := gd.ExportConfig{
			Username:        getConfigValue(username, "username"),
			Password:        getConfigValue(password, "password"),
			CookiePath:      getConfigValue(cookiePath, "cookie_path"),
			OutputDir:       getConfigValue(outputDir, "output_dir"),
			BatchSize:       batchSize,
			MaxActivities:   maxActivities,
			SkipExisting:    skipExisting,
			ContinueOnError: continueOnError,
			JSONMode:        jsonMode,
		}

		// Call the business logic
		return gd.Export(config)
	},
}

// getConfigValue returns the flag value if non-empty, otherwise returns the viper config value
func getConfigValue(flagValue, viperKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(viperKey)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Viper defaults
	viper.SetDefault("output_dir", "./activities")
	viper.SetDefault("cookie_path", "~/.garmindump/cookie.json")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.garmindump/garmindump.yaml)")

	// Export command flags
	exportCmd.Flags().StringVar(&username, "username", "", "Garmin username (default: $GARMIN_USERNAME or interactive prompt)")
	exportCmd.Flags().StringVar(&password, "password", "", "Garmin password (default: $GARMIN_PASSWORD or hidden prompt)")
	exportCmd.Flags().StringVar(&outputDir, "output", "", "Directory where FIT files will be written (default: ./activities)")
	exportCmd.Flags().StringVar(&cookiePath, "cookie-path", "", "Path to cookie file (default: ~/.garmindump/cookie.json)")
	exportCmd.Flags().Int("batch-size", 100, "Number of activities fetched per API request")
	exportCmd.Flags().Int("max-activities", 0, "Stop after fetching this many activities (0 = every activity)")
	exportCmd.Flags().Bool("skip-existing", false, "Skip downloads when the destination FIT file already exists")
	exportCmd.Flags().Bool("continue-on-error", false, "Keep exporting remaining activities when a download fails")
	exportCmd.Flags().Bool("json", false, "Output structured JSON logs instead of interactive mode")

	// Bind environment variables
	viper.BindEnv("username", "GARMIN_USERNAME")
	viper.BindEnv("password", "GARMIN_PASSWORD")
	viper.BindEnv("cookie_path", "GARMIN_COOKIE_PATH")
	viper.BindEnv("output_dir", "GARMIN_OUTPUT_DIR")

	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in ~/.garmindump/ directory with name "garmindump" (without extension).
		viper.AddConfigPath(filepath.Join(home, ".garmindump"))
		viper.SetConfigName("garmindump")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in silently (logging is via LOG_LEVEL env var)
	viper.ReadInConfig()
}
