package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/config"
	"github.com/aura-webinar/liveqa/pkg/client"
)

type commandContext struct {
	serverFlag *string
	verbose    *bool

	once   sync.Once
	cfg    config.PollerConfig
	client *client.Client
	err    error
}

func (c *commandContext) pollerConfig() config.PollerConfig {
	c.load()
	return c.cfg
}

func (c *commandContext) apiClient() (*client.Client, error) {
	c.load()
	return c.client, c.err
}

func (c *commandContext) load() {
	c.once.Do(func() {
		c.cfg = config.LoadClient()
		if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
			c.cfg.BaseURL = strings.TrimSpace(*c.serverFlag)
		}
		c.client, c.err = client.New(c.cfg.BaseURL, nil)
	})
}

func (c *commandContext) logger() *zap.Logger {
	if c.verbose == nil || !*c.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newRootCommand() *cobra.Command {
	var serverFlag string
	var verbose bool
	ctx := &commandContext{serverFlag: &serverFlag, verbose: &verbose}

	rootCmd := &cobra.Command{
		Use:           "liveqa",
		Short:         "Live event Q&A client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Server base URL (default $LIVEQA_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log poll errors to stderr")

	rootCmd.AddCommand(newCreateEventCommand(ctx))
	rootCmd.AddCommand(newAskCommand(ctx))
	rootCmd.AddCommand(newModerateCommand(ctx))
	rootCmd.AddCommand(newListenCommand(ctx))
	return rootCmd
}
