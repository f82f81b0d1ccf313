package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/adapter/postgres"
	userrepo "github.com/ipakeev/words-fan-bot/internal/adapter/postgres/user"
	wordrepo "github.com/ipakeev/words-fan-bot/internal/adapter/postgres/word"
	userwordrepo "github.com/ipakeev/words-fan-bot/internal/adapter/postgres/userword"
	"github.com/ipakeev/words-fan-bot/internal/adapter/provider/yandict"
	"github.com/ipakeev/words-fan-bot/internal/adapter/redis/state"
	"github.com/ipakeev/words-fan-bot/internal/adapter/tts"
	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/dispatch"
	"github.com/ipakeev/words-fan-bot/internal/service/vocab"
	"github.com/ipakeev/words-fan-bot/internal/transport/chat"
	"github.com/ipakeev/words-fan-bot/internal/transport/telegram"
	"github.com/ipakeev/words-fan-bot/migrations"
)

// shutdownTimeout bounds the drain of queues and tasks on exit.
const shutdownTimeout = 30 * time.Second

// Run is the application entry point: configuration, logger, storage,
// adapters, services, transport. It blocks until ctx is cancelled and
// then shuts the pipeline down back to front.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := postgres.Migrate(ctx, cfg.Database.DSN, migrations.FS); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	states, err := state.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := states.Close(); err != nil {
			logger.Warn("close redis", slog.String("error", err.Error()))
		}
	}()

	words := wordrepo.New(pool)
	users := userrepo.New(pool)
	userWords := userwordrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	dict := yandict.NewProvider(cfg.Dictionary, logger)
	speech := tts.NewGenerator(cfg.Audio, logger)
	client := telegram.NewClient(cfg.Bot.Token, logger)
	audio := chat.NewAudioUploader(speech, client, cfg.Bot.TempChatID, logger)

	langs := config.Langs{}
	vocabSvc := vocab.NewService(logger, words, userWords, users, dict, audio, txManager, langs)

	if n, err := vocabSvc.CountDictionary(ctx); err != nil {
		logger.Warn("count dictionary", slog.String("error", err.Error()))
	} else {
		logger.Info("dictionary ready", slog.Int64("words", n))
	}

	dispatcher := dispatch.NewDispatcher(cfg.Dispatch, logger, chat.ErrStaleCallback)
	tasks := dispatch.NewTasks(cfg.Dispatch, logger, chat.ErrStaleCallback)

	messenger := chat.NewMessenger(client, states, logger)
	bot := chat.NewBot(client, messenger, vocabSvc, states, dispatcher, tasks, langs, logger)
	poller := telegram.NewPoller(client, bot, logger)

	logger.Info("bot is running")
	if cfg.Bot.AdminID != 0 {
		if _, err := client.SendMessage(ctx, cfg.Bot.AdminID, "Бот запущен.", nil); err != nil {
			logger.Warn("notify admin", slog.String("error", err.Error()))
		}
	}

	pollErr := poller.Run(ctx)

	// Intake has stopped; drain the queues, then the deferred tasks,
	// before the defers close redis and the pool.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Shutdown(drainCtx); err != nil {
		logger.Warn("dispatcher shutdown", slog.String("error", err.Error()))
	}
	if err := tasks.Shutdown(drainCtx); err != nil {
		logger.Warn("tasks shutdown", slog.String("error", err.Error()))
	}

	logger.Info("application stopped")
	return pollErr
}
