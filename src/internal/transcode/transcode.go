package transcode

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/floostack/transcoder/ffmpeg"
)

// Fixed GIF output parameters: 12 fps, 512px wide with aspect ratio
// preserved, lanczos resampling.
const (
	gifFrameRate = 12
	gifFilter    = "scale=512:-1:flags=lanczos"
	gifFormat    = "gif"
)

// TranscodeError wraps a failure reported by the transcoding engine.
type TranscodeError struct {
	Input string
	Err   error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Input, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// Transcoder converts videos to optimized GIFs through ffmpeg.
type Transcoder struct {
	FfmpegBinPath  string
	FfprobeBinPath string
}

func New(ffmpegPath, ffprobePath string) *Transcoder {
	return &Transcoder{
		FfmpegBinPath:  ffmpegPath,
		FfprobeBinPath: ffprobePath,
	}
}

// ToGif transcodes the video at input into a GIF at output, overwriting any
// existing file. It blocks until ffmpeg exits.
func (t *Transcoder) ToGif(input, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	// A stale GIF from an earlier run must not mask a failed transcode.
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return err
	}

	frameRate := gifFrameRate
	filter := gifFilter
	format := gifFormat
	overwrite := true
	opts := ffmpeg.Options{
		FrameRate:    &frameRate,
		VideoFilter:  &filter,
		OutputFormat: &format,
		Overwrite:    &overwrite,
	}

	_, err := ffmpeg.
		New(&ffmpeg.Config{
			FfmpegBinPath:  t.FfmpegBinPath,
			FfprobeBinPath: t.FfprobeBinPath,
		}).
		Input(input).
		Output(output).
		Start(opts)
	if err != nil {
		return &TranscodeError{Input: input, Err: err}
	}

	// The transcoder library can swallow ffmpeg's exit status, so the
	// produced file is the source of truth for success.
	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return &TranscodeError{Input: input, Err: fmt.Errorf("ffmpeg produced no output at %s", output)}
	}
	return nil
}
