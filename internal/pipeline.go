// Package internal wires the configured backends into the pipeline
// driver and runs one batch to completion.
package internal

import (
	"context"
	"fmt"

	"github.com/gemeindemedia/sermonpress/internal/convert"
	"github.com/gemeindemedia/sermonpress/internal/driver"
	"github.com/gemeindemedia/sermonpress/internal/event"
	"github.com/gemeindemedia/sermonpress/internal/post"
	"github.com/gemeindemedia/sermonpress/internal/publish/mail"
	"github.com/gemeindemedia/sermonpress/internal/publish/peertube"
	"github.com/gemeindemedia/sermonpress/internal/publish/wordpress"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
)

var log = logger.Get("Core")

type (
	// audioHost abstracts over the two audio hosting strategies; both
	// live in the wordpress package.
	audioHost interface {
		Publish(ctx context.Context, path string) (string, error)
	}

	// SermonPress is the top-level orchestrator. It owns the event bus
	// and the configured backend clients, and delegates the actual file
	// processing to the driver.
	SermonPress struct {
		config   SermonPressConfig
		eventBus event.EventCoordinator
	}
)

func New(config SermonPressConfig) *SermonPress {
	return &SermonPress{
		config:   config,
		eventBus: event.New(),
	}
}

// Run connects to the configured backends and processes the current
// contents of the search path as one batch. Connecting eagerly means a
// credential problem is reported before any file is touched.
func (app *SermonPress) Run(ctx context.Context) error {
	log.Emit(logger.INFO, "Starting batch over search path %s\n", app.config.SearchPath)

	driverConfig := driver.Config{
		SearchPath:            app.config.SearchPath,
		ArchivePath:           app.config.ArchivePath,
		BaptismArchiveDirName: app.config.BaptismArchiveDirName,
		VideoExtension:        app.config.VideoExtension,
		AudioExtension:        app.config.AudioExtension,
		TextExtension:         app.config.TextExtension,
		Language:              app.config.Language,
		BackendTimeoutSeconds: app.config.BackendTimeoutSeconds,
	}

	videoHost := peertube.New(app.config.PeerTube, driverConfig.BackendTimeout())
	if err := videoHost.Connect(ctx); err != nil {
		return fmt.Errorf("cannot connect to video host: %w", err)
	}

	cms, err := wordpress.New(app.config.WordPress)
	if err != nil {
		return fmt.Errorf("cannot construct CMS client: %w", err)
	}

	var audio audioHost = cms
	if app.config.AudioStrategy == AudioStrategyLocalCopy {
		audio = wordpress.NewLocalCopy(app.config.AudioCopy)
	}

	converter := convert.New(app.config.Converter, app.config.VideoExtension, app.config.AudioExtension)
	composer := post.NewComposer(app.config.Post, app.config.SermonStartUTC)
	notifier := mail.New(app.config.Mail)

	pipeline, err := driver.New(driverConfig, converter, videoHost, audio, cms, notifier, composer, app.eventBus)
	if err != nil {
		return err
	}

	var completed, troubled int
	app.eventBus.RegisterHandlerFunction(event.ItemComplete, func(event.Event, event.Payload) { completed++ })
	app.eventBus.RegisterHandlerFunction(event.ItemTroubled, func(event.Event, event.Payload) { troubled++ })

	runErr := pipeline.Run(ctx)
	app.logSummary(pipeline, completed, troubled)
	return runErr
}

func (app *SermonPress) logSummary(pipeline *driver.Driver, completed int, troubled int) {
	items := pipeline.AllItems()
	if len(items) == 0 {
		log.Emit(logger.INFO, "Nothing to do, search path holds no candidate files\n")
		return
	}

	status := logger.SUCCESS
	if troubled > 0 {
		status = logger.WARNING
	}

	log.Emit(status, "Batch finished: %d file(s) discovered, %d completed, %d troubled\n", len(items), completed, troubled)
	for _, item := range items {
		if item.Trouble != nil {
			log.Emit(logger.WARNING, "  %s: %s (%s)\n", item.Path, item.Trouble.Error(), item.Trouble.Type())
		}
	}
}
