package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ternhq/tern/pkg/compatibility"
)

func newWatchCommand() *Command {
	return &Command{
		Name:        "watch",
		Description: "Re-check a contract against a baseline whenever it changes",
		Flags:       flag.NewFlagSet("watch", flag.ExitOnError),
		Run:         runWatch,
	}
}

func runWatch(args []string) error {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	file := flags.String("file", "", "Contract file to watch (required)")
	against := flags.String("against", "", "Baseline contract file (required)")
	format := flags.String("format", "", "Contract format (default: inferred from extension)")
	mode := flags.String("mode", "BACKWARD", "Compatibility mode")
	debounce := flags.Duration("debounce", 300*time.Millisecond, "Delay before re-checking after a write")

	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watch(ctx, *file, *against, *format, *mode, *debounce, os.Stdout)
}

func watch(ctx context.Context, file, against, format, modeName string, debounce time.Duration, out io.Writer) error {
	if file == "" || against == "" {
		return fmt.Errorf("both --file and --against are required")
	}
	mode, err := compatibility.ParseMode(modeName)
	if err != nil {
		return err
	}

	cache, err := newResultCache(64)
	if err != nil {
		return err
	}
	engine := compatibility.NewEngine()

	// Editors replace files on save, so watch the directory and filter by
	// name; watching the file itself loses the watch on rename.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(file), err)
	}

	watchOnce(cache, engine, against, file, format, mode, out)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(file) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			watchOnce(cache, engine, against, file, format, mode, out)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "watch error: %v\n", err)
		}
	}
}

// watchOnce runs a single comparison pass and prints a one-line verdict.
func watchOnce(cache *resultCache, engine *compatibility.Engine, against, file, format string, mode compatibility.Mode, out io.Writer) {
	stamp := time.Now().Format("15:04:05")
	result, err := cache.compare(engine, against, file, format)
	if err != nil {
		fmt.Fprintf(out, "[%s] ERROR %v\n", stamp, err)
		return
	}
	if err := compatibility.Check(result, mode); err != nil {
		fmt.Fprintf(out, "[%s] FAIL  level=%s changes=%d (%v)\n", stamp, result.Level, len(result.Findings), err)
		return
	}
	fmt.Fprintf(out, "[%s] OK    level=%s changes=%d\n", stamp, result.Level, len(result.Findings))
}
