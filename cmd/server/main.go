package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	handler "blog-admin-backend/api"
	"blog-admin-backend/pkg/config"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

var version = "dev"

var cli struct {
	Listen  string `help:"HTTP listen address; overrides PORT." env:"LISTEN"`
	Debug   bool   `help:"Enable debug logging." env:"DEBUG"`
	Version kong.VersionFlag
}

// main runs the same router the Vercel function serves, bound to a
// local listener for development.
func main() {
	cmd := kong.Parse(&cli,
		kong.Name("blog-admin-backend"),
		kong.Vars{"version": version},
	)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.GetCached()
	if cli.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	addr := cli.Listen
	if addr == "" {
		addr = fmt.Sprintf(":%s", cfg.Port)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.NewRouter(cfg),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       time.Minute,
	}

	log.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("listening")
	cmd.FatalIfErrorf(server.ListenAndServe())
}
