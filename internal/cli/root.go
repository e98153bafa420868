// Package cli implements the forgecore CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/app"
	"github.com/rcliao/forgecore/internal/config"
	"github.com/rcliao/forgecore/internal/logging"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath  string
	dataDirFlag string
	formatFlag  string
	verbose     bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "forgecore",
	Short: "Natural-language scene editing with a journal",
	Long: "forgecore turns free-form requests into scene edits, runs them in a sandbox\n" +
		"and journals every request. Rule based and deterministic.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $FORGECORE_CONFIG or ~/.forgecore/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dataDirFlag, "data-dir", "d", "", "Data directory, overrides the config file")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	l, err := logging.New(c.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	cfg, logger = c, l
	return nil
}

func openApp() *app.App {
	a, err := app.Open(cfg, logger)
	if err != nil {
		exitErr("open", err)
	}
	return a
}

func jsonOutput() bool { return formatFlag == "json" }

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func printJSONLine(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
