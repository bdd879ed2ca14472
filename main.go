package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"messengerbots/internal/adapters/cooldown"
	"messengerbots/internal/adapters/generator"
	"messengerbots/internal/adapters/handler"
	"messengerbots/internal/adapters/reporter"
	"messengerbots/internal/adapters/sender"
	"messengerbots/internal/adapters/store"
	"messengerbots/internal/core/domain/bot"
	"messengerbots/internal/core/port"
	"messengerbots/internal/core/service"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting messengerbots...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	viper.SetDefault("bot.enabled_by_default", true)
	viper.SetDefault("handler.timeout", "2m")
	viper.SetDefault("chat.context_timeout", "30m")
	viper.SetDefault("store.path", "data/messengerbots")
	viper.SetDefault("cooldown.purge_interval", "1m")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	db, err := store.NewPebble(viper.GetString("store.path"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed opening store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("failed closing store")
		}
	}()

	cooldowns, closeCooldowns, err := cooldownStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing cooldown store")
	}
	defer func() {
		if err := closeCooldowns(); err != nil {
			log.Err(err).Msg("failed closing cooldown store")
		}
	}()

	metrics, err := reporter.NewPrometheus(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed registering metrics")
	}

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	convoTimeout, err := time.ParseDuration(viper.GetString("chat.context_timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for chat context in config")
	}

	var messageHandler *handler.Message

	b, err := telegram.New(viper.GetString("telegram.bot_token"), telegram.WithDefaultHandler(
		func(ctx context.Context, b *telegram.Bot, update *models.Update) {
			messageHandler.Handle(ctx, b, update)
		}))
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	s := sender.NewTelegram(b)

	orGenerator := generator.NewOpenRouter(
		generator.NewOpenRouterClient(viper.GetString("openrouter.api_key")),
		viper.GetString("chat.system_prompt"))

	conversations := bot.NewConversations(convoTimeout)

	registry := bot.NewRegistry()
	factories := []port.HandlerFactory{
		bot.NewReplyFactory(s),
		bot.NewPingFactory(s),
		bot.NewRollFactory(s),
		bot.NewDebugFactory(s),
		bot.NewChatFactory(bot.ChatParams{
			TextGenerator: orGenerator,
			TextSender:    s,
			Conversations: conversations,
			DefaultModel:  viper.GetString("chat.default_model"),
			Timeout:       handlerTimeout,
		}),
		bot.NewChatResetFactory(conversations, s),
	}

	for _, factory := range factories {
		if err := registry.Register(factory, false); err != nil {
			log.Panic().Err(err).Msg("failed registering bot handler")
		}
	}

	actions := service.NewActions(bot.NewResolver(registry), registry, db)
	if err := seedActions(ctx, actions); err != nil {
		log.Fatal().Err(err).Msg("failed seeding bot actions from config")
	}

	authorizer, err := service.NewAuthorizer(s)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing authorizer")
	}

	dispatcher := service.NewDispatcher(service.DispatcherParams{
		Actions:   db,
		Registry:  registry,
		Cooldowns: cooldowns,
		Recorder:  metrics,
	})

	messageHandler = handler.NewMessage(handler.MessageParams{
		Dispatcher: dispatcher,
		Threads:    db,
		Renderer:   service.NewRenderer(db, metrics),
		Authorizer: authorizer,
		Timeout:    handlerTimeout,
		ChatBots:   viper.GetBool("bot.enabled_by_default"),
	})

	if addr := viper.GetString("metrics.listen"); addr != "" {
		go serveMetrics(ctx, addr)
	}

	log.Info().Strs("handlers", registry.Identities()).Msg("bot listening")
	b.Start(ctx)
}

// cooldownStore uses redis when configured and falls back to an in-memory tracker. The returned func closes
// the redis client.
func cooldownStore(ctx context.Context) (port.CooldownStore, func() error, error) {
	url := viper.GetString("redis.url")
	if url == "" {
		log.Info().Msg("no redis configured, keeping cooldowns in memory")
		return service.NewCooldownTracker(ctx), func() error { return nil }, nil
	}

	redisStore, err := cooldown.NewRedis(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	return redisStore, redisStore.Close, nil
}

// seedActions adds the actions listed in the config to threads that have none yet.
func seedActions(ctx context.Context, actions *service.Actions) error {
	var entries []map[string]any
	if err := viper.UnmarshalKey("actions", &entries); err != nil {
		return fmt.Errorf("invalid actions in config: %w", err)
	}

	skip := make(map[string]bool)
	for _, entry := range entries {
		threadID := fmt.Sprint(entry["thread_id"])
		delete(entry, "thread_id")

		if _, seen := skip[threadID]; !seen {
			existing, err := actions.List(ctx, threadID)
			if err != nil {
				return err
			}
			skip[threadID] = len(existing) > 0
		}

		if skip[threadID] {
			continue
		}

		action, err := actions.Add(ctx, threadID, entry)
		if err != nil {
			return fmt.Errorf("thread %s: %w", threadID, err)
		}

		log.Info().Str("threadId", threadID).Str("action", action.ID).Str("handler", action.Handler).
			Msg("seeded bot action")
	}

	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Msg("metrics server stopped")
	}
}
