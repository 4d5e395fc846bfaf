// Command debounced-build watches a directory and coalesces bursts of file
// changes into a single rebuild action. Saving a handful of files in quick
// succession triggers one rebuild, while a long-running stream of changes is
// still rebuilt at least once per max wait.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkdryden/debounce"
)

func main() {
	var wait time.Duration
	var maxWait time.Duration
	var verbose bool

	flag.DurationVar(&wait, "wait", 200*time.Millisecond,
		"quiet period before rebuilding")
	flag.DurationVar(&maxWait, "max-wait", 2*time.Second,
		"upper bound on rebuild delay under continuous changes")
	flag.BoolVar(&verbose, "verbose", false,
		"log every debounce decision")
	flag.Parse()

	dir := flag.Arg(0)
	if dir == "" {
		dir = "."
	}

	opts := []debounce.Option{debounce.MaxWait(maxWait)}
	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, debounce.WithLogger(logger), debounce.Verbose())
	}

	var builds int
	d, err := debounce.New(wait, func(path string) (int, error) {
		builds++
		fmt.Printf("rebuild #%d (last change: %s)\n", builds, path)

		return builds, nil
	}, opts...)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		fmt.Printf("can't watch %q; error: %v\n", dir, err)
		os.Exit(1)
	}

	stopC := make(chan os.Signal, 1)
	signal.Notify(stopC, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("watching %q; rebuilding after %s of quiet (max delay %s)...\n",
		dir, wait, maxWait)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if _, err := d.Call(ev.Name); err != nil {
				fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-stopC:
			fmt.Println("\nshutting down...")
			if _, err := d.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "final rebuild failed: %v\n", err)
			}

			return
		}
	}
}
