package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/interpreter"
	"github.com/sg19chess/mla-voice-saas/agent/orchestrator"
	storex "github.com/sg19chess/mla-voice-saas/agent/store"
	configx "github.com/sg19chess/mla-voice-saas/pkg/config"
	_ "github.com/sg19chess/mla-voice-saas/pkg/logger/autoload"
	openrouterx "github.com/sg19chess/mla-voice-saas/pkg/openrouter"
	"github.com/sg19chess/mla-voice-saas/server"
)

type AppConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" split_words:"true" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" split_words:"true"`
	RedisPass   string `envconfig:"REDIS_PASSWORD" split_words:"true"`
	// SequenceBackend selects the complaint number counter: "postgres"
	// or "redis".
	SequenceBackend      string `envconfig:"SEQUENCE_BACKEND" split_words:"true" default:"postgres"`
	DefaultRoutingNumber string `envconfig:"DEFAULT_ROUTING_NUMBER" split_words:"true"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(appCfg.DatabaseURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	var rdb *redis.Client
	if appCfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPass,
		})
		defer rdb.Close()
	}

	st := storex.New(db)
	directory := storex.NewDirectory(st, appCfg.DefaultRoutingNumber)

	var seq contractx.SequenceSource = st
	if strings.EqualFold(appCfg.SequenceBackend, "redis") {
		if rdb == nil {
			panic("SEQUENCE_BACKEND=redis requires REDIS_ADDR")
		}
		seq = storex.NewRedisSequence(rdb)
	}
	saver := storex.NewSaver(st, storex.NewAllocator(seq))

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		panic("failed to initialize openrouter client")
	}

	interp, err := interpreter.New(openRouterClient, openRouterCfg.Model, openRouterCfg.Temperature)
	if err != nil {
		panic(err)
	}

	orchCfg := configx.MustNew[orchestrator.Config]("ORCHESTRATOR")
	orch, err := orchestrator.New(directory, saver, *orchCfg)
	if err != nil {
		panic(err)
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	manager := server.NewManager(*serverCfg, orch, interp, rdb)
	srv := server.NewServer(*serverCfg, manager)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("call gateway failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
