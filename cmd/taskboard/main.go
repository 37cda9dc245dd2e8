package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Local project and task board backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("db", "data/taskboard.db", "Path to sqlite database file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("telemetry", false, "Export task event metrics to stdout")

	_ = v.BindPFlag("addr", flags.Lookup("addr"))
	_ = v.BindPFlag("db_path", flags.Lookup("db"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("telemetry.enabled", flags.Lookup("telemetry"))

	return cmd
}
