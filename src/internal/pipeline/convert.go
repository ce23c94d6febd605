package pipeline

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/fetch"
	"github.com/gif-pipeline/src/internal/transcode"
	"github.com/gif-pipeline/src/internal/videolist"
)

// GifTranscoder is what the convert driver needs from the transcoding engine.
type GifTranscoder interface {
	ToGif(input, output string) error
}

type ConvertResult struct {
	Converted int
	Skipped   int
}

// Converter runs the first pipeline stage: download every remote .mp4 the
// video list references, transcode it to a GIF, and rewrite the entry to the
// project-relative GIF path. Any download or transcode failure aborts the
// whole run and no output file is written; this is deliberately stricter
// than the upload stage's per-entry isolation.
type Converter struct {
	Cfg        config.Config
	Logger     *zap.Logger
	Client     *http.Client
	Transcoder GifTranscoder
}

func NewConverter(cfg config.Config, logger *zap.Logger) *Converter {
	return &Converter{
		Cfg:        cfg,
		Logger:     logger,
		Client:     http.DefaultClient,
		Transcoder: transcode.New(cfg.FfmpegPath, cfg.FfprobePath),
	}
}

func (c *Converter) Run(ctx context.Context) (ConvertResult, error) {
	var res ConvertResult

	doc, err := videolist.Load(c.Cfg.InputPath)
	if err != nil {
		return res, err
	}

	entries := videolist.Collect(doc)
	c.Logger.Info("video list loaded",
		zap.String("path", c.Cfg.InputPath),
		zap.Int("entries", len(entries)))

	for _, entry := range entries {
		ref := videolist.Video(entry)
		if !strings.HasSuffix(strings.ToLower(ref), ".mp4") {
			res.Skipped++
			continue
		}

		base := basenameFromURL(ref)
		videoPath := filepath.Join(c.Cfg.VideoDir, base)
		gifPath := filepath.Join(c.Cfg.GifDir, strings.TrimSuffix(base, path.Ext(base))+".gif")

		if err := fetch.EnsureLocal(ctx, c.Client, ref, videoPath); err != nil {
			return res, err
		}
		// The GIF is regenerated even when it already exists; only the
		// mp4 download is cached.
		if err := c.Transcoder.ToGif(videoPath, gifPath); err != nil {
			return res, err
		}

		rel := filepath.ToSlash(gifPath)
		videolist.SetVideo(entry, rel)
		res.Converted++
		c.Logger.Info("video converted", zap.String("source", ref), zap.String("gif", rel))
	}

	if err := videolist.Save(c.Cfg.ConvertedPath, doc); err != nil {
		return res, err
	}

	color.New(color.FgGreen).Printf("Converted %d videos (%d skipped) -> %s\n",
		res.Converted, res.Skipped, c.Cfg.ConvertedPath)
	return res, nil
}

// basenameFromURL derives a local filename from a source reference,
// percent-decoding the URL path first.
func basenameFromURL(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(ref)
}
