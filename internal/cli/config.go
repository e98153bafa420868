package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/forgecore/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
		Run:   runConfigShow,
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(initCmd)

	RootCmd.AddCommand(configCmd)
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func runConfigShow(cmd *cobra.Command, args []string) {
	if jsonOutput() {
		printJSON(cfg)
		return
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		exitErr("config", err)
	}
	fmt.Printf("# %s\n%s", configFile(), b)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	path := configFile()
	if _, err := os.Stat(path); err == nil && !force {
		exitErr("config init", fmt.Errorf("%s exists (use --force)", path))
	}
	if err := cfg.Save(path); err != nil {
		exitErr("config init", err)
	}
	fmt.Println(path)
}
