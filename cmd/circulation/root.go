package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/readingcorner/library-circulation/app/shared/shell/config"
)

const version = "1.0.0"

type cli struct {
	viper      *viper.Viper
	configFile string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		viper:  config.NewViper(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "circulation",
		Short:         "School library circulation service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./circulation.yaml if present)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = c.viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.seedCommand(),
		c.reconcileOverdueCommand(),
	)

	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	return config.Load(c.viper, c.configFile)
}
