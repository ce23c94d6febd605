package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/fetch"
	"github.com/gif-pipeline/src/internal/service"
	"github.com/gif-pipeline/src/internal/storage/s3_store"
	"github.com/gif-pipeline/src/internal/videolist"
)

// FileNotFoundError reports a local video reference that points nowhere.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("referenced file does not exist: %s", e.Path)
}

// MediaUploader is what the upload driver needs from the uploader service.
type MediaUploader interface {
	Upload(ctx context.Context, sourceRef, localPath string) (string, bool, error)
}

type UploadResult struct {
	Uploaded int
	Reused   int
	Failed   int
}

// Publisher runs the second pipeline stage: resolve every video reference to
// a local file, upload it to the object store, and rewrite the entry to the
// public URL. Entry failures are logged and counted but never abort the run,
// so every entry that succeeded still ends up in the output file.
type Publisher struct {
	Cfg      config.Config
	Logger   *zap.Logger
	Fetcher  *fetch.Fetcher
	Uploader MediaUploader
}

func NewPublisher(cfg config.Config, logger *zap.Logger) *Publisher {
	return &Publisher{
		Cfg:      cfg,
		Logger:   logger,
		Fetcher:  fetch.NewFetcher(logger, cfg.DownloadDelay()),
		Uploader: service.NewUploader(s3_store.GetStore(cfg), cfg, logger),
	}
}

func (p *Publisher) Run(ctx context.Context) (UploadResult, error) {
	var res UploadResult

	doc, err := videolist.Load(p.Cfg.ConvertedPath)
	if err != nil {
		return res, err
	}

	entries := videolist.Collect(doc)
	p.Logger.Info("video list loaded",
		zap.String("path", p.Cfg.ConvertedPath),
		zap.Int("entries", len(entries)))

	for _, entry := range entries {
		ref := videolist.Video(entry)
		if ref == "" {
			continue
		}

		publicURL, reused, err := p.processEntry(ctx, ref)
		if err != nil {
			res.Failed++
			p.Logger.Error("entry upload failed", zap.String("video", ref), zap.Error(err))
			continue
		}

		videolist.SetVideo(entry, publicURL)
		if reused {
			res.Reused++
		} else {
			res.Uploaded++
		}
	}

	if err := videolist.Save(p.Cfg.UploadedPath, doc); err != nil {
		return res, err
	}

	color.New(color.FgGreen).Printf("Uploaded %d files (%d reused, %d failed) -> %s\n",
		res.Uploaded, res.Reused, res.Failed, p.Cfg.UploadedPath)
	return res, nil
}

// processEntry resolves the reference to a local file, downloading remote
// ones with retry, then uploads it.
func (p *Publisher) processEntry(ctx context.Context, ref string) (string, bool, error) {
	localPath := filepath.FromSlash(ref)
	if service.IsRemote(ref) {
		localPath = filepath.Join(p.Cfg.UploadCacheDir, basenameFromURL(ref))
		if err := p.Fetcher.FetchFile(ctx, ref, localPath); err != nil {
			return "", false, err
		}
	} else if info, err := os.Stat(localPath); err != nil || !info.Mode().IsRegular() {
		return "", false, &FileNotFoundError{Path: ref}
	}

	return p.Uploader.Upload(ctx, ref, localPath)
}
