package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/storage"
)

// Uploader puts resolved media files into the object store and hands back
// public URLs. It remembers the keys uploaded during the current run so that
// several entries pointing at the same file cost a single PUT.
type Uploader struct {
	store         storage.Storage
	logger        *zap.Logger
	bucket        string
	endpoint      string
	publicBaseURL string
	prefix        string
	projectRoot   string
	uploaded      map[string]string
}

func NewUploader(store storage.Storage, cfg config.Config, logger *zap.Logger) *Uploader {
	return &Uploader{
		store:         store,
		logger:        logger,
		bucket:        cfg.Bucket,
		endpoint:      cfg.Endpoint(),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		prefix:        cfg.KeyPrefix,
		projectRoot:   ".",
		uploaded:      map[string]string{},
	}
}

// Upload stores the file at localPath under the key derived from sourceRef
// and returns the public URL plus whether an earlier upload was reused.
func (u *Uploader) Upload(ctx context.Context, sourceRef, localPath string) (string, bool, error) {
	key := DeriveObjectKey(u.projectRoot, sourceRef, u.prefix)
	if publicURL, ok := u.uploaded[key]; ok {
		u.logger.Info("object already uploaded", zap.String("key", key))
		return publicURL, true, nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", false, err
	}

	opts := storage.PutOptions{
		ContentType:   ContentTypeFor(localPath),
		ContentLength: info.Size(),
	}
	if err := u.store.Put(ctx, u.bucket, key, f, opts); err != nil {
		return "", false, fmt.Errorf("put %s: %w", key, err)
	}

	publicURL := u.publicURL(key)
	u.uploaded[key] = publicURL
	u.logger.Info("object uploaded",
		zap.String("key", key),
		zap.String("content_type", opts.ContentType),
		zap.Int64("bytes", opts.ContentLength))
	return publicURL, false, nil
}

func (u *Uploader) publicURL(key string) string {
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, key)
}
