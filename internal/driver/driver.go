// Package driver walks the watched directory and runs each discovered
// file through the per-file pipeline: classify by filename, convert,
// publish to the configured backends, then archive the source. Files
// are processed strictly sequentially; one file's failure never stops
// the rest of the batch.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gemeindemedia/sermonpress/internal/event"
	"github.com/gemeindemedia/sermonpress/internal/post"
	"github.com/gemeindemedia/sermonpress/internal/publish"
	"github.com/gemeindemedia/sermonpress/internal/sermon"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
	"github.com/google/uuid"
)

var log = logger.Get("Driver")

type (
	converter interface {
		VideoToAudio(videoPath string) (string, error)
	}

	videoHost interface {
		Upload(ctx context.Context, request publish.UploadRequest) (string, error)
	}

	audioHost interface {
		Publish(ctx context.Context, path string) (string, error)
	}

	postCreator interface {
		Create(ctx context.Context, draft publish.PostDraft) (string, error)
	}

	notifier interface {
		Notify(ctx context.Context, subject string, htmlBody string) error
	}

	composer interface {
		Compose(meta sermon.Metadata, videoURL string, audioURL string) publish.PostDraft
	}

	// Driver owns the per-file state machine. It holds no cross-file
	// state beyond the item list of the current run.
	Driver struct {
		config    Config
		converter converter
		videos    videoHost
		audio     audioHost
		posts     postCreator
		notify    notifier
		composer  composer
		eventBus  event.EventCoordinator
		items     []*Item
	}
)

// New validates the configured paths and constructs the driver. The
// archive directories are created if missing; a search path which is
// not an existing directory is a hard error.
func New(
	config Config,
	converter converter,
	videos videoHost,
	audio audioHost,
	posts postCreator,
	notify notifier,
	composer composer,
	eventBus event.EventCoordinator,
) (*Driver, error) {
	if info, err := os.Stat(config.SearchPath); err != nil {
		return nil, fmt.Errorf("search path '%s' could not be accessed: %w", config.SearchPath, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("search path '%s' is not a directory", config.SearchPath)
	}

	if err := os.MkdirAll(config.BaptismArchivePath(), os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("archive path '%s' could not be created: %w", config.ArchivePath, err)
	}

	return &Driver{
		config:    config,
		converter: converter,
		videos:    videos,
		audio:     audio,
		posts:     posts,
		notify:    notify,
		composer:  composer,
		eventBus:  eventBus,
		items:     make([]*Item, 0),
	}, nil
}

// Run processes the snapshot of candidate files found in the search
// path at the moment of the call, one file fully to completion (or
// failure) before the next. Only a backend authentication failure (or
// a cancelled context) aborts the run; all other failures are recorded
// on the offending item and the batch continues.
func (driver *Driver) Run(ctx context.Context) error {
	items, err := driver.discoverFiles()
	if err != nil {
		return err
	}

	driver.items = items
	log.Emit(logger.INFO, "Discovered %d candidate file(s) in %s\n", len(items), driver.config.SearchPath)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Emit(logger.NEW, "Processing %s (%s)\n", item.Path, item.Class)
		if err := driver.processItem(ctx, item); err != nil {
			var trouble Trouble
			if !errors.As(err, &trouble) {
				trouble = newTrouble(GenericFailure, err)
			}

			item.Trouble = &trouble
			item.State = Troubled
			log.Emit(logger.ERROR, "Processing of %s failed (%s): %s\n", item.Path, trouble.Type(), trouble.Error())
			driver.eventBus.Dispatch(event.ItemTroubled, item.ID)

			if errors.Is(err, publish.ErrAuth) {
				return fmt.Errorf("aborting run: %w", err)
			}
		}
	}

	return nil
}

// AllItems returns every item of the current run, including rejected
// and troubled ones.
func (driver *Driver) AllItems() []*Item {
	return driver.items
}

// discoverFiles takes a non-recursive snapshot of the search path,
// listing candidate files for each of the three configured extensions.
// Videos are listed first, matching the order they are processed in.
func (driver *Driver) discoverFiles() ([]*Item, error) {
	classes := []struct {
		extension string
		class     FileClass
	}{
		{driver.config.VideoExtension, VideoFile},
		{driver.config.AudioExtension, AudioFile},
		{driver.config.TextExtension, TextFile},
	}

	items := make([]*Item, 0)
	for _, candidate := range classes {
		paths, err := filepath.Glob(filepath.Join(driver.config.SearchPath, "*."+candidate.extension))
		if err != nil {
			return nil, fmt.Errorf("failed to list search path for '%s' files: %w", candidate.extension, err)
		}

		for _, path := range paths {
			items = append(items, &Item{
				ID:    uuid.New(),
				Path:  path,
				Class: candidate.class,
				State: Discovered,
			})
		}
	}

	return items, nil
}

func (driver *Driver) processItem(ctx context.Context, item *Item) error {
	switch item.Class {
	case VideoFile:
		return driver.processVideo(ctx, item)
	case AudioFile:
		return driver.processAudio(ctx, item)
	case TextFile:
		return driver.processText(ctx, item)
	default:
		return newTrouble(GenericFailure, fmt.Errorf("item %s has unknown file class", item))
	}
}

// processVideo classifies a video file, trying the sermon pattern
// first and the baptism pattern second. A file matching neither is
// left in place with no side effects.
func (driver *Driver) processVideo(ctx context.Context, item *Item) error {
	meta, ok, err := sermon.ExtractSermon(item.Path)
	if err != nil {
		return newTrouble(MetadataFailure, err)
	}
	if ok {
		driver.markClassified(item)
		return driver.processSermonVideo(ctx, item, meta)
	}

	baptism, ok, err := sermon.ExtractBaptism(item.Path)
	if err != nil {
		return newTrouble(MetadataFailure, err)
	}
	if ok {
		driver.markClassified(item)
		return driver.processBaptismVideo(ctx, item, baptism)
	}

	driver.reject(item)
	return nil
}

// processSermonVideo runs the full sermon pipeline: convert to audio,
// upload the video, publish the audio, create the CMS post, archive
// the source.
func (driver *Driver) processSermonVideo(ctx context.Context, item *Item, meta sermon.Metadata) error {
	audioPath, err := driver.converter.VideoToAudio(item.Path)
	if err != nil {
		return newTrouble(ConversionFailure, err)
	}

	// The transcoded audio lands in the watched directory; if it
	// survived this run it would be discovered as an audio-only sermon
	// next run and published twice. Remove it however this file's
	// pipeline ends.
	defer driver.removeTransientAudio(audioPath)

	item.State = Converted
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)

	videoURL, err := driver.uploadVideo(ctx, publish.UploadRequest{
		Path:        item.Path,
		DisplayName: meta.DisplayName(),
		Language:    driver.config.Language,
		Privacy:     publish.PrivacyPublic,
	})
	if err != nil {
		return newTrouble(VideoUploadFailure, err)
	}

	audioURL, err := driver.publishAudio(ctx, audioPath)
	if err != nil {
		return newTrouble(AudioPublishFailure, err)
	}

	if err := driver.createPost(ctx, driver.composer.Compose(meta, videoURL, audioURL)); err != nil {
		return newTrouble(PostFailure, err)
	}

	item.State = Published
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)

	if err := driver.archive(item, driver.config.ArchivePath); err != nil {
		return newTrouble(ArchiveFailure, err)
	}

	driver.complete(item)
	return nil
}

// processBaptismVideo uploads the video password-protected, mails the
// watch link and derived password to the configured recipients, and
// moves the source into the baptism archive subdirectory. No CMS post
// and no audio extraction for baptisms.
func (driver *Driver) processBaptismVideo(ctx context.Context, item *Item, meta sermon.BaptismMetadata) error {
	watchURL, err := driver.uploadVideo(ctx, publish.UploadRequest{
		Path:        item.Path,
		DisplayName: meta.DisplayName(),
		Language:    driver.config.Language,
		Privacy:     publish.PrivacyPasswordProtected,
		Password:    meta.Password(),
	})
	if err != nil {
		return newTrouble(VideoUploadFailure, err)
	}

	item.State = Published
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)

	subject, body := post.BaptismNotification(meta, watchURL)
	if err := driver.sendNotification(ctx, subject, body); err != nil {
		return newTrouble(NotifyFailure, err)
	}

	if err := driver.archive(item, driver.config.BaptismArchivePath()); err != nil {
		return newTrouble(ArchiveFailure, err)
	}

	driver.complete(item)
	return nil
}

// processAudio publishes an audio-only sermon recording and creates a
// CMS post without a video section.
func (driver *Driver) processAudio(ctx context.Context, item *Item) error {
	meta, ok, err := sermon.ExtractSermon(item.Path)
	if err != nil {
		return newTrouble(MetadataFailure, err)
	}
	if !ok {
		driver.reject(item)
		return nil
	}

	driver.markClassified(item)

	audioURL, err := driver.publishAudio(ctx, item.Path)
	if err != nil {
		return newTrouble(AudioPublishFailure, err)
	}

	if err := driver.createPost(ctx, driver.composer.Compose(meta, "", audioURL)); err != nil {
		return newTrouble(PostFailure, err)
	}

	item.State = Published
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)

	if err := driver.archive(item, driver.config.ArchivePath); err != nil {
		return newTrouble(ArchiveFailure, err)
	}

	driver.complete(item)
	return nil
}

// processText creates a CMS post with both media sections rendered as
// unavailability placeholders, then deletes the source file.
func (driver *Driver) processText(ctx context.Context, item *Item) error {
	meta, ok, err := sermon.ExtractSermon(item.Path)
	if err != nil {
		return newTrouble(MetadataFailure, err)
	}
	if !ok {
		driver.reject(item)
		return nil
	}

	driver.markClassified(item)

	if err := driver.createPost(ctx, driver.composer.Compose(meta, "", "")); err != nil {
		return newTrouble(PostFailure, err)
	}

	item.State = Published
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)

	if err := os.Remove(item.Path); err != nil {
		return newTrouble(ArchiveFailure, err)
	}

	driver.complete(item)
	return nil
}

func (driver *Driver) uploadVideo(ctx context.Context, request publish.UploadRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, driver.config.BackendTimeout())
	defer cancel()

	return driver.videos.Upload(callCtx, request)
}

func (driver *Driver) publishAudio(ctx context.Context, path string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, driver.config.BackendTimeout())
	defer cancel()

	return driver.audio.Publish(callCtx, path)
}

func (driver *Driver) createPost(ctx context.Context, draft publish.PostDraft) error {
	callCtx, cancel := context.WithTimeout(ctx, driver.config.BackendTimeout())
	defer cancel()

	_, err := driver.posts.Create(callCtx, draft)
	return err
}

func (driver *Driver) sendNotification(ctx context.Context, subject string, htmlBody string) error {
	callCtx, cancel := context.WithTimeout(ctx, driver.config.BackendTimeout())
	defer cancel()

	return driver.notify.Notify(callCtx, subject, htmlBody)
}

// archive moves the item's source file into the directory provided,
// preventing it from being rediscovered on the next run.
func (driver *Driver) archive(item *Item, destinationDir string) error {
	if err := os.MkdirAll(destinationDir, os.ModeDir|os.ModePerm); err != nil {
		return err
	}

	destination := filepath.Join(destinationDir, filepath.Base(item.Path))
	if err := os.Rename(item.Path, destination); err != nil {
		return err
	}

	log.Emit(logger.REMOVE, "Archived %s to %s\n", item.Path, destination)
	return nil
}

func (driver *Driver) removeTransientAudio(audioPath string) {
	if err := os.Remove(audioPath); err != nil {
		log.Emit(logger.WARNING, "Failed to remove transient audio file %s: %s\n", audioPath, err.Error())
	}
}

func (driver *Driver) markClassified(item *Item) {
	item.State = Classified
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)
}

func (driver *Driver) reject(item *Item) {
	item.State = Rejected
	log.Emit(logger.VERBOSE, "File %s matches no known naming pattern, leaving in place\n", item.Path)
	driver.eventBus.Dispatch(event.ItemUpdate, item.ID)
}

func (driver *Driver) complete(item *Item) {
	item.State = Archived
	log.Emit(logger.SUCCESS, "Finished processing %s\n", item.Path)
	driver.eventBus.Dispatch(event.ItemComplete, item.ID)
}
