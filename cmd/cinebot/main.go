// Command cinebot runs the cinema Telegram bot and its maintenance tasks.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/cinebot/bot/app"
	"github.com/m3rciful/cinebot/core/buildinfo"
	corecmd "github.com/m3rciful/cinebot/core/cmd"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:               "cinebot",
		Short:             "Telegram bot for browsing films and nearby cinemas",
		SilenceUsage:      true,
		Version:           buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $"+configEnvVar+" or "+defaultConfigPath+")")

	resolve := func() (string, error) {
		return corecmd.ResolveConfigPath(corecmd.Options{
			ConfigPath:        configPath,
			ConfigEnvVar:      configEnvVar,
			DefaultConfigPath: defaultConfigPath,
		})
	}

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(resolve),
		newSeedCmd(resolve),
		newCatalogCmd(resolve),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath:        *configPath,
				ConfigEnvVar:      configEnvVar,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					cfg, err := app.LoadConfig(path)
					if err != nil {
						return nil, err
					}
					return cfg, nil
				},
				Bootstrap: app.Bootstrap,
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("cinebot " + buildinfo.String())
		},
	}
}
