// Command bot runs the vocabulary bot: it connects to postgres and
// redis, applies pending migrations and long-polls the chat transport
// until interrupted.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ipakeev/words-fan-bot/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
