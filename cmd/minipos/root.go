package main

import (
	"github.com/spf13/cobra"

	"MiniPOS/internal/config"
)

type globalFlags struct {
	configFile     string
	envFile        string
	logLevel       string
	catalogBackend string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "minipos",
		Short:         "Point-of-sale inventory and billing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logger.level")
	root.PersistentFlags().StringVar(&flags.catalogBackend, "catalog-backend", "", "override catalog.backend (file, sqlite, memory)")

	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newProductsCmd(&flags))
	root.AddCommand(newSaleCmd(&flags))
	root.AddCommand(newBillsCmd(&flags))

	return root
}

// loadConfig applies the layers in order: defaults, YAML, .env, environment
// and finally the command line.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if _, err := config.LoadEnvFile(f.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}

	if f.logLevel != "" {
		cfg.Logger.Level = f.logLevel
	}
	if f.catalogBackend != "" {
		cfg.Catalog.Backend = f.catalogBackend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
