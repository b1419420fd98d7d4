// Package gcs copies prediction files into a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/nespreso-client/internal/config"
)

const (
	netCDFContentType = "application/x-netcdf"
	uploadConcurrency = 4
)

// objectOpener returns a writer for one object in the bucket. The object is
// committed when the writer is closed, unless ctx was cancelled first.
type objectOpener func(ctx context.Context, object string) io.WriteCloser

// Uploader copies local files to gs://bucket/prefix/<basename>.
type Uploader struct {
	client *storage.Client
	bucket string
	prefix string
	open   objectOpener
	logger *slog.Logger
}

// NewUploader connects to Cloud Storage with application default credentials.
func NewUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	bucket := client.Bucket(cfg.GCSBucket)
	open := func(ctx context.Context, object string) io.WriteCloser {
		w := bucket.Object(object).NewWriter(ctx)
		w.ContentType = netCDFContentType
		return w
	}
	u := newUploader(cfg.GCSBucket, cfg.GCSPrefix, open, logger)
	u.client = client
	return u, nil
}

func newUploader(bucket, prefix string, open objectOpener, logger *slog.Logger) *Uploader {
	return &Uploader{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		open:   open,
		logger: logger,
	}
}

// Upload copies each file and returns the resulting gs:// URIs in input order.
func (u *Uploader) Upload(ctx context.Context, files []string) ([]string, error) {
	uris := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, file := range files {
		g.Go(func() error {
			object := objectName(u.prefix, file)
			if err := u.uploadFile(ctx, file, object); err != nil {
				return err
			}
			uris[i] = fmt.Sprintf("gs://%s/%s", u.bucket, object)
			u.logger.Info("file uploaded", "file", file, "uri", uris[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}

func (u *Uploader) uploadFile(ctx context.Context, file, object string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	// Cancelling the object's context before Close abandons the upload, so a
	// failed copy never commits a truncated object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := u.open(ctx, object)
	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", file, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", object, err)
	}
	return nil
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}

func objectName(prefix, file string) string {
	base := filepath.Base(file)
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}
