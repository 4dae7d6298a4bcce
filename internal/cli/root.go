package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/model"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "dev"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	logJSON  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausula",
	Short: "Clausula - field extraction for lease and comodato contracts",
	Long: `Clausula reads Spanish-language lease (locación) and loan-for-use
(comodato) contracts in PDF or DOCX and suggests the fields a contract
record needs: property, owner, tenant, term dates, rent amount, currency
and IPC adjustment.

Every value is a heuristic suggestion. Missing fields are returned as null
and are meant to be confirmed by a person.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(&logger.Config{
			Level:      logger.ParseLevel(viper.GetString("log.level")),
			Output:     os.Stderr,
			JSON:       viper.GetBool("log.json"),
			TimeFormat: "15:04:05",
		})
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clausula %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clausula/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	setDefaults(viper.GetViper(), model.DefaultConfig())

	rootCmd.AddCommand(versionCmd)
}

// setDefaults registers every config key so environment variables can
// override keys that no config file mentions
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("extraction.preview_runes", cfg.Extraction.PreviewRunes)
	v.SetDefault("extraction.default_ipc_frequency", cfg.Extraction.DefaultIPCFrequency)
	v.SetDefault("extraction.decode_timeout", cfg.Extraction.DecodeTimeout)
	v.SetDefault("extraction.max_file_bytes", cfg.Extraction.MaxFileBytes)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.request_timeout", cfg.Server.RequestTimeout)
	v.SetDefault("server.requests_per_second", cfg.Server.RequestsPerSecond)
	v.SetDefault("server.burst", cfg.Server.Burst)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.json", cfg.Log.JSON)

	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.include_footer", cfg.Output.IncludeFooter)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".clausula"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAUSULA_SERVER_ADDR overrides server.addr
	viper.SetEnvPrefix("CLAUSULA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves defaults, config file, environment and flags into a
// Config
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
