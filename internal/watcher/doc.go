// Package watcher reports changes to a fixed set of files with debouncing.
//
// # Overview
//
// Editors save in bursts: a write, a chmod, sometimes a rename over the
// original. FileWatcher collects the events for a quiet period and calls
// onChange once with every path that changed.
//
// Directories are watched instead of the files themselves so that a file
// replaced by rename keeps being reported.
//
// # Usage
//
//	w := watcher.NewWatcher(200*time.Millisecond, func(paths []string) {
//	    reload(paths)
//	})
//	if err := w.Watch(ctx, configPath, snippetsPath); err != nil {
//	    return err
//	}
//	defer w.Stop()
package watcher
