// Command replay runs an editing script through the completion engine
// without a terminal and prints the resulting session as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/app"
	"github.com/billie-coop/locomplete/internal/config"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/uithread"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: replay <script.yaml> [project-dir]")
		fmt.Println("Example: replay testdata/for-loop.yaml .")
		os.Exit(1)
	}

	script, err := LoadScript(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	dir := filepath.Dir(os.Args[1])
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}
	cfg := config.NewManager(dir)
	if err := cfg.Load(); err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := zap.NewNop()
	if os.Getenv("LOCOMPLETE_DEBUG") != "" {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	loop := uithread.NewLoop()
	defer loop.Close()

	a := app.New(ctx, app.Options{
		Config:     cfg,
		Events:     events.NewBroker(),
		Owner:      loop,
		Dispatcher: loop,
		Logger:     logger,
	})
	defer func() {
		_ = loop.Do(ctx, a.Close)
		a.Wait()
	}()

	res, err := NewReplayer(a, loop).Run(ctx, script)
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal(err)
	}
}
