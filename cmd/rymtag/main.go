// Package main provides the entry point for the rymtag batch tagger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/grantoesterling/rymtag-server/internal/config"
	"github.com/grantoesterling/rymtag-server/internal/di"
	"github.com/grantoesterling/rymtag-server/internal/di/providers"
	"github.com/grantoesterling/rymtag-server/internal/logger"
	"github.com/grantoesterling/rymtag-server/internal/service"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start rymtag: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	svc := do.MustInvoke[*service.TaggingService](injector)

	// Cancel the run on SIGINT/SIGTERM so a batch can be interrupted cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, svc, cfg, flag.Args())

	// Shutdown services in reverse order; the container handles ordering.
	if shutdownErr := injector.Shutdown(); shutdownErr != nil {
		log.Error("Shutdown error", "error", shutdownErr)
	}

	if storeHandle, invokeErr := do.Invoke[*providers.StoreHandle](injector); invokeErr == nil {
		if closeErr := storeHandle.Shutdown(); closeErr != nil {
			log.Error("Failed to close database", "error", closeErr)
		}
	}

	if err != nil {
		log.WithError(err).Error("Run failed")
		os.Exit(1)
	}
}

// run dispatches the positional command. With no command, the whole
// configured library is tagged.
func run(ctx context.Context, svc *service.TaggingService, cfg *config.Config, args []string) error {
	command := "tag"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "tag":
		var root string
		if len(args) > 1 {
			root = args[1]
		}
		summary, err := svc.TagLibrary(ctx, root, cfg.Library.ForceUpdate)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %d/%d releases, skipped %d, missing %d, errors %d\n",
			summary.Updated, summary.Processed, summary.Skipped, summary.Missing, summary.Errors)
		return nil

	case "lookup":
		if len(args) < 3 {
			return fmt.Errorf("usage: rymtag lookup ARTIST TITLE")
		}
		result, err := svc.Lookup(ctx, service.LookupRequest{Artist: args[1], Title: args[2]})
		if err != nil {
			return err
		}
		fmt.Printf("Matched: %s - %s (score %.3f)\n", result.MatchedArtist, result.MatchedTitle, result.Score)
		printList("Genres", result.Tags.Genres)
		printList("Secondary genres", result.Tags.SecondaryGenres)
		printList("Descriptors", result.Tags.Descriptors)
		printList("Groupings", result.Tags.Groupings)
		return nil

	case "missing":
		missing, err := svc.MissingMatches(ctx)
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			fmt.Println("No missing matches recorded")
			return nil
		}
		for _, mm := range missing {
			fmt.Printf("%s - %s (seen %d)\n", mm.Artist, mm.Title, mm.SeenCount)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (expected tag, lookup, or missing)", command)
	}
}

func printList(label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, v := range values {
		fmt.Printf("  - %s\n", v)
	}
}
