// main.go
//
// Entry point for the Toy Store Tussle server.
//   - Loads config (.env + environment + optional rules file).
//   - Starts the sprite check; game routes answer 503 until it finishes.
//   - Opens the results archive when DB_PATH is set.
//   - Serves the HTTP API.

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/toy-store-tussle/assets"
	"github.com/robalobadob/toy-store-tussle/internal/config"
	"github.com/robalobadob/toy-store-tussle/internal/history"
	"github.com/robalobadob/toy-store-tussle/internal/httpserver"
	"github.com/robalobadob/toy-store-tussle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.UsingDevSecret() {
		log.Warn().Msg("MATCH_TOKEN_SECRET not set, using development secret")
	}

	icons := assets.NewLoader(cfg.IconDir)
	go func() {
		if err := icons.Load(context.Background()); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.IconDir).Msg("failed to load sprites")
		}
	}()

	var rec history.Recorder = history.Nop{}
	closeArchive := func() {}
	if cfg.DBPath != "" {
		hs, err := history.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open results archive")
		}
		rec = hs
		closeArchive = func() {
			if err := hs.Close(); err != nil {
				log.Warn().Err(err).Msg("close results archive")
			}
		}
	}

	srv := httpserver.New(store.NewMemoryStore(), rec, httpserver.Options{
		ClientOrigin:  cfg.ClientOrigin,
		TokenSecret:   cfg.TokenSecret,
		TokenTTL:      cfg.TokenTTL,
		SecureCookies: cfg.SecureCookie,
		Seed:          cfg.Seed,
		DailySalt:     cfg.DailySalt,
		Points:        cfg.Points,
		Ready:         icons.Ready(),
	})
	log.Info().Str("port", cfg.Port).Msg("starting toy-store-tussle")
	if err := srv.Start(":" + cfg.Port); err != nil {
		closeArchive()
		log.Fatal().Err(err).Msg("server exited")
	}
}
