package storage

import (
	"context"
	"io"
)

type PutOptions struct {
	ContentType   string
	ContentLength int64
}

// Storage is the slice of an object store the upload pipeline needs: a
// single PUT per object key.
type Storage interface {
	Put(ctx context.Context, bucket string, key string, r io.Reader, opts PutOptions) error
}
