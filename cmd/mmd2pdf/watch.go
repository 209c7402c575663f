package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// watchOps are the operations that trigger a reconversion.
const watchOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// watchAndConvert converts j, then reconverts whenever the input file
// changes until ctx is canceled. Conversion errors are printed and do not
// stop the watcher.
func watchAndConvert(ctx context.Context, conv Converter, j *job, env *Environment) error {
	target, err := filepath.Abs(j.inputPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", j.inputPath, err)
	}

	reconvert := func() {
		if err := convertFile(ctx, conv, j, env); err != nil && ctx.Err() == nil {
			printError(env.Stderr, err)
		}
	}
	reconvert()
	if ctx.Err() != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched so editors that replace the file keep working.
	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if !j.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", j.inputPath)
	}

	watchLoop(ctx, watcher.Events, watcher.Errors, target, watchDebounce, reconvert, env.Stderr)
	return nil
}

// watchLoop calls onChange once per burst of relevant events on target,
// after debounce has passed without a new event. It returns when ctx is
// done or a channel is closed.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, target string, debounce time.Duration, onChange func(), stderr io.Writer) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if !isInputChange(ev, target) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return
			}
			fmt.Fprintf(stderr, "warning: watcher: %v\n", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// isInputChange reports whether ev is a content change of target.
func isInputChange(ev fsnotify.Event, target string) bool {
	return ev.Op&watchOps != 0 && filepath.Clean(ev.Name) == target
}
