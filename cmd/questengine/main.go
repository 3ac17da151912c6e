package main

import (
	"os"

	"github.com/hectorgimenez/questengine/internal/config"
	"github.com/spf13/cobra"
)

var (
	buildID   string
	buildTime string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "questengine",
		Short:         "Runs one supervised quest against the host game",
		Long:          "questengine waits for the host game to be ready, clicks through the quest launch, watches the quest until it completes or fails, then reports the result and closes the game.",
		Version:       buildID,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuest(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "path to the questengine yaml config")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run a quest (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runQuest(cmd.Context(), cfgPath)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a config file from the bundled template",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.CreateFromTemplate(cfgPath); err != nil {
					return err
				}
				cmd.Printf("Config created at %s, fill in the screen regions before running.\n", cfgPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "recover",
			Short: "Print and clear a quest result that was saved but never reported",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return recoverCmd(cmd, cfgPath)
			},
		},
	)

	return root
}
