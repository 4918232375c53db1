package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"waitbot/internal/adapters/handler"
	"waitbot/internal/adapters/sender"
	"waitbot/internal/adapters/storage"
	"waitbot/internal/adapters/telemetry"
	"waitbot/internal/core/domain/command"
	"waitbot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting waitbot...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(viper.GetString("storage.path"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open waitlist store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close waitlist store")
		}
	}()

	token := viper.GetString("telegram.bot_token")
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("failed to fetch bot identity")
	}

	s := sender.NewTelegramSender(b, me.Username)

	recorder := telemetry.New()
	defer recorder.Flush()

	promptTimeout := service.DefaultPromptTimeout
	if v := viper.GetString("gate.prompt_timeout"); v != "" {
		promptTimeout, err = time.ParseDuration(v)
		if err != nil {
			log.Panic().Err(err).Msg("invalid prompt timeout in config")
		}
	}

	gate := service.NewRegistrationGate(s, store, promptTimeout)
	auth := service.NewAuthorizer(s)
	broadcaster := service.NewBroadcaster(store, s)

	commandRegistry := &command.Registry{}

	subscribe := command.NewSubscribe(store, s, gate, "/subscribe")

	commandRegistry.Register(command.NewStart(gate, s, "/start"))
	commandRegistry.Register(command.NewPing(s, "/ping"))
	commandRegistry.Register(command.NewHelp(commandRegistry, s, "/help"))
	commandRegistry.Register(command.NewOpen(store, s, auth, "/openwaitlist"))
	commandRegistry.Register(command.NewClose(store, s, auth, "/closewaitlist"))
	commandRegistry.Register(subscribe)
	commandRegistry.RegisterPrefix("/subscribe_", subscribe)
	commandRegistry.Register(command.NewUnsubscribe(store, s, "/unsubscribe"))
	commandRegistry.Register(command.NewBroadcast(broadcaster, s, "/broadcast"))
	commandRegistry.Register(command.NewListWaitlists(store, s, "/listwaitlists"))
	commandRegistry.Register(command.NewListSubscribers(store, s, "/list"))
	commandRegistry.Register(command.NewMyWaitlists(store, s, "/mywaitlists"))

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	commandHandler := handler.NewCommand(commandRegistry, s, recorder, me.Username, handlerTimeout)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)

	log.Info().Str("bot", me.Username).Msg("bot listening")
	b.Start(ctx)

	log.Info().Msg("shutting down")
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
