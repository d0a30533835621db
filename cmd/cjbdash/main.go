package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cjb-incidents/core/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		utils.NewLogger().Errorf("cjbdash: %v", err)
		os.Exit(1)
	}
}
