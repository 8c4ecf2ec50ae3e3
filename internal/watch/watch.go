// Package watch waits for a submitted run to finish by observing its output file.
//
// The generated scripts always end with a fixed completion banner, whether or
// not the training step succeeded, so the banner showing up in the output file
// is the only reliable end-of-job signal available to the submission host.
package watch

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// FinishedMarker is the banner line printed by every generated script on completion.
const FinishedMarker = "JOB FINISHED"

// fallbackInterval guards against lost inotify events, e.g. on NFS mounts
// where the output file is written by another node.
const fallbackInterval = 5 * time.Second

// WaitForCompletion blocks until the completion banner appears in outputFile
// or the context is done. The file does not need to exist yet.
func WaitForCompletion(ctx context.Context, outputFile string) error {
	// Check before setting anything up: the job may already be done.
	if found, err := containsMarker(outputFile); err != nil {
		return err
	} else if found {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create watcher")
	}
	defer watcher.Close()

	// Watch the directory: the output file is created by the scheduler at an
	// arbitrary later point.
	dir := filepath.Dir(outputFile)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "could not watch '%s'", dir)
	}

	ticker := time.NewTicker(fallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if event.Name != outputFile {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if found, err := containsMarker(outputFile); err != nil {
				return err
			} else if found {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			return errors.Wrap(err, "watch error")

		case <-ticker.C:
			if found, err := containsMarker(outputFile); err != nil {
				return err
			} else if found {
				return nil
			}
		}
	}
}

// containsMarker scans the output file for the completion banner. A missing
// file simply means the job has not produced output yet. The scan is chunked
// rather than line-based: training programs emit carriage-return progress
// output that lands in the log as single lines far beyond any sane line
// buffer.
func containsMarker(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "could not open '%s'", path)
	}
	defer file.Close()

	marker := []byte(FinishedMarker)
	buf := make([]byte, 64*1024)
	window := make([]byte, 0, len(buf)+len(marker))

	for {
		n, err := file.Read(buf)
		if n > 0 {
			window = append(window, buf[:n]...)
			if bytes.Contains(window, marker) {
				return true, nil
			}

			// keep a marker-sized tail so matches straddling chunk
			// boundaries are still seen
			if len(window) > len(marker)-1 {
				window = append(window[:0], window[len(window)-(len(marker)-1):]...)
			}
		}

		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrapf(err, "could not read '%s'", path)
		}
	}
}
