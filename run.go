package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/app"
	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/config"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/logging"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/tui"
	"github.com/billie-coop/locomplete/internal/tui/components/editor"
	"github.com/billie-coop/locomplete/internal/tui/components/popup"
	"github.com/billie-coop/locomplete/internal/tui/styles"
)

func runEditor(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := cfgMgr.Get()

	logger, err := logging.New(logging.Options{
		File:  cfgMgr.Resolve(cfg.Log.File),
		Debug: debug || cfg.Log.Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	themeName := cfg.Theme
	if theme != "" {
		themeName = theme
	}
	themes := styles.NewManager(themeName)
	styles.SetDefaultManager(themes)

	original, err := readFile(path)
	if err != nil {
		return err
	}
	view := text.NewView("main", text.NewBuffer(bufferContentType(path), original))

	ev := events.NewBroker()
	d := tui.NewDispatcher()

	var services *app.App
	pop := popup.New(
		popup.WithLogger(logger),
		popup.WithRows(cfg.PageSize),
		popup.WithDescriber(func(item *completion.Item) string {
			s := services.Broker.GetSession(view)
			if s == nil {
				return ""
			}
			return s.Describe(ctx, item)
		}),
	)
	services = app.New(ctx, app.Options{
		Config:     cfgMgr,
		Events:     ev,
		Presenter:  func(completion.View) completion.Presenter { return pop },
		Owner:      d,
		Dispatcher: d,
		Logger:     logger,
	})
	defer func() {
		services.Close()
		services.Wait()
	}()

	w, err := services.Watch(ctx, func(c *config.Config) {
		if theme != "" {
			return
		}
		if err := themes.SetTheme(c.Theme); err != nil {
			logger.Warn("theme not applied", zap.String("theme", c.Theme), zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("config hot reload disabled", zap.Error(err))
	} else {
		defer w.Stop()
	}

	title := path
	if title == "" {
		title = "scratch"
	}
	m := tui.New(tui.Options{
		Title:      title,
		View:       view,
		Broker:     services.Broker,
		Router:     services.Router,
		Popup:      pop,
		Dispatcher: d,
		Events:     ev,
		Keys:       editor.DefaultKeyMap(),
		Logger:     logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	d.Attach(p.Send)

	logger.Info("editor started", zap.String("file", path), zap.String("content_type", view.ContentType()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	final := view.Snapshot().Text()
	if path == "" || final == original {
		return nil
	}
	if err := os.WriteFile(path, []byte(final), 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	logger.Info("file saved", zap.String("file", path), zap.Int("bytes", len(final)))
	return nil
}

// readFile returns the file's text. A file that does not exist yet starts
// empty.
func readFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// bufferContentType picks the --content-type flag, then the file
// extension, then "text".
func bufferContentType(path string) string {
	if contentType != "" {
		return contentType
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return "text"
}
