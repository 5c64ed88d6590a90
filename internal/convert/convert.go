// Package convert wraps the ffmpeg binary (via the transcoder package)
// to produce the audio companion of a sermon video recording.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/floostack/transcoder/ffmpeg"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
)

var log = logger.Get("Convert")

// The fixed encoding profile used for every extracted audio track.
const (
	audioSampleRate = 44100
	audioChannels   = 2
	audioBitrate    = "128k"
)

type (
	Config struct {
		FfmpegBinaryPath  string `json:"ffmpeg_binary" env:"FFMPEG_BINARY_PATH" env-default:"/usr/bin/ffmpeg"`
		FfprobeBinaryPath string `json:"ffprobe_binary" env:"FFPROBE_BINARY_PATH" env-default:"/usr/bin/ffprobe"`
	}

	// Converter extracts the audio track of a video file into a
	// companion audio file next to the source. The video and audio
	// extensions are fixed for the lifetime of one run.
	Converter struct {
		config   Config
		videoExt string
		audioExt string
	}
)

func New(config Config, videoExtension string, audioExtension string) *Converter {
	return &Converter{
		config:   config,
		videoExt: videoExtension,
		audioExt: audioExtension,
	}
}

// AudioPath derives the output path for the audio companion of the
// video path provided: same directory, same base name, with the video
// extension suffix swapped for the audio extension suffix.
func (converter *Converter) AudioPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, "."+converter.videoExt) + "." + converter.audioExt
}

// VideoToAudio performs a full decode of the video's audio track and
// writes it to the derived audio path using the fixed encoding profile.
// The returned path is only valid when the error is nil.
func (converter *Converter) VideoToAudio(videoPath string) (string, error) {
	audioPath := converter.AudioPath(videoPath)

	skipVideo := true
	overwrite := true
	sampleRate := audioSampleRate
	channels := audioChannels
	bitrate := audioBitrate
	opts := &ffmpeg.Options{
		SkipVideo:     &skipVideo,
		AudioRate:     &sampleRate,
		AudioChannels: &channels,
		AudioBitrate:  &bitrate,
		Overwrite:     &overwrite,
	}

	ffmpegCfg := &ffmpeg.Config{
		ProgressEnabled: true,
		FfmpegBinPath:   converter.config.FfmpegBinaryPath,
		FfprobeBinPath:  converter.config.FfprobeBinaryPath,
	}

	log.Emit(logger.DEBUG, "Extracting audio track of %s to %s\n", videoPath, audioPath)
	progress, err := ffmpeg.
		New(ffmpegCfg).
		Input(videoPath).
		Output(audioPath).
		WithOptions(opts).
		Start(opts)
	if err != nil {
		return "", parseFfmpegError(err)
	}

	for update := range progress {
		log.Emit(logger.VERBOSE, "Transcode progress for %s: %v\n", videoPath, update)
	}

	return audioPath, nil
}

// parseFfmpegError tries to pick out the relevant information from the
// huge output log ffmpeg produces on failure. The error we get contains
// lots of information about how the binary was compiled, which is of no
// use; we just want the 'message' JSON encoded inside.
func parseFfmpegError(err error) error {
	messageMatcher := regexp.MustCompile(`(?s)message: ({.*})`)
	groups := messageMatcher.FindStringSubmatch(err.Error())
	if len(groups) == 0 {
		return err
	}

	var out map[string]interface{}
	if jsonErr := json.Unmarshal([]byte(groups[1]), &out); jsonErr != nil {
		// We failed to extract the info.. just use the entire string as our error
		return errors.New(groups[1])
	}

	if ffmpegException, ok := out["error"].(map[string]interface{}); ok {
		if message, ok := ffmpegException["string"].(string); ok {
			return errors.New(message)
		}
	}

	return fmt.Errorf("ffmpeg failure: %s", groups[1])
}
