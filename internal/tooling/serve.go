// CLASSIFICATION: COMMUNITY
// Filename: serve.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package tooling

import (
	"errors"
	"log"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	fileserver "pubserve/fileserver/http"
	"pubserve/internal/config"
)

type serveOptions struct {
	configPath string
	bind       string
	port       int
	root       string
	logFile    string
	dev        bool
	adminPort  int
	healthPort int
	watch      bool
	rate       float64
	burst      int
}

func newServeCmd() *cobra.Command {
	return newServeCmdWith(&serveOptions{})
}

func newServeCmdWith(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the root directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Server.Dev {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			}
			srv, err := fileserver.New(serverConfig(cfg, log.Default()))
			if err != nil {
				return err
			}
			defer srv.Close()
			if err := srv.Start(cmd.Context()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "TOML or YAML config file")
	f.StringVar(&opts.bind, "bind", "", "bind address")
	f.IntVar(&opts.port, "port", config.DefaultPort, "listen port")
	f.StringVar(&opts.root, "root", config.DefaultRoot, "directory to serve")
	f.StringVar(&opts.logFile, "log-file", "", "access log file")
	f.BoolVar(&opts.dev, "dev", false, "enable developer mode")
	f.IntVar(&opts.adminPort, "admin-port", 0, "status and metrics port (0 disables)")
	f.IntVar(&opts.healthPort, "health-port", 0, "gRPC health port (0 disables)")
	f.BoolVar(&opts.watch, "watch", false, "log changes under the root")
	f.Float64Var(&opts.rate, "rate", 0, "requests per second (0 disables)")
	f.IntVar(&opts.burst, "burst", 0, "rate limiter burst")
	return cmd
}

// load layers explicitly set flags over the file and environment settings.
func (o *serveOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("bind") {
		cfg.Server.Bind = o.bind
	}
	if f.Changed("port") {
		cfg.Server.Port = o.port
	}
	if f.Changed("root") {
		cfg.Server.Root = o.root
	}
	if f.Changed("log-file") {
		cfg.Server.LogFile = o.logFile
	}
	if f.Changed("dev") {
		cfg.Server.Dev = o.dev
	}
	if f.Changed("admin-port") {
		cfg.Admin.Port = o.adminPort
	}
	if f.Changed("health-port") {
		cfg.Admin.HealthPort = o.healthPort
	}
	if f.Changed("watch") {
		cfg.Server.Watch = o.watch
	}
	if f.Changed("rate") {
		cfg.Server.Rate = o.rate
	}
	if f.Changed("burst") {
		cfg.Server.Burst = o.burst
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serverConfig(cfg *config.Config, logger fileserver.Logger) fileserver.Config {
	return fileserver.Config{
		Bind:       cfg.Server.Bind,
		Port:       cfg.Server.Port,
		Root:       cfg.Server.Root,
		LogFile:    cfg.Server.LogFile,
		Dev:        cfg.Server.Dev,
		Rate:       rate.Limit(cfg.Server.Rate),
		Burst:      cfg.Server.Burst,
		AdminPort:  cfg.Admin.Port,
		HealthPort: cfg.Admin.HealthPort,
		Watch:      cfg.Server.Watch,
		Logger:     logger,
	}
}
