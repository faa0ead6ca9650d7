// Command meows identifies a nucleotide sequence and builds a phylogeny of
// its genus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meows-bio/meows/internal/adapters/driven/config/file"
	"github.com/meows-bio/meows/internal/adapters/driven/storage/memory"
	"github.com/meows-bio/meows/internal/adapters/driven/storage/sqlite"
	"github.com/meows-bio/meows/internal/adapters/driving/cli"
	"github.com/meows-bio/meows/internal/app"
	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
	"github.com/meows-bio/meows/internal/core/services"
	"github.com/meows-bio/meows/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return domain.ExitUsage
	}

	var runs driven.RunStore
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("Run history unavailable, using memory: %v", err)
		runs = memory.NewRunStore()
	} else {
		defer store.Close()
		runs = store.RunStore()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Settings: services.NewSettingsService(configStore),
		History:  services.NewHistoryService(runs),
		Pipeline: func(progress driven.RunObserver) driving.PipelineRunner {
			return app.NewLauncher(
				app.WithRunStore(runs),
				app.WithObservers(progress),
			)
		},
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitCode(err)
	}
	return domain.ExitOK
}
