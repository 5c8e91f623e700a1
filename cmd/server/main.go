// Command server runs the to-do list backend: the notification webhook, the
// management operation endpoint, and the timeline overview.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ideanotion/glasstodo/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
