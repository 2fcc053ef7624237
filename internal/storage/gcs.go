package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSClient stores checkpoints in a Google Cloud Storage bucket, optionally
// under a path prefix.
type GCSClient struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSClient creates a new GCS client
func NewGCSClient(ctx context.Context, bucketName, prefix string) (*GCSClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// CreateDir is a no-op: GCS has no directories, only object prefixes
func (g *GCSClient) CreateDir(ctx context.Context, dirPath string) error {
	return nil
}

func (g *GCSClient) objectPath(filePath string) string {
	p := strings.TrimLeft(filePath, "/")
	if g.prefix == "" {
		return p
	}
	return g.prefix + "/" + p
}

// StoreFile stores a file as a bucket object with a content type derived
// from its extension
func (g *GCSClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	obj := g.client.Bucket(g.bucket).Object(g.objectPath(filePath))

	writer := obj.NewWriter(ctx)
	writer.ContentType = GetContentType(filePath)

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write object %s: %w", g.objectPath(filePath), err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", g.objectPath(filePath), err)
	}
	return nil
}

// GetFile retrieves an object from the bucket
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	obj := g.client.Bucket(g.bucket).Object(g.objectPath(filePath))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", g.objectPath(filePath), err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", g.objectPath(filePath), err)
	}
	return data, nil
}

// ListDir lists objects under a prefix, returning paths relative to the
// client's prefix
func (g *GCSClient) ListDir(ctx context.Context, dirPath string, recursive bool) ([]string, error) {
	prefix := g.objectPath(strings.TrimRight(dirPath, "/") + "/")
	query := &storage.Query{Prefix: prefix}
	if !recursive {
		query.Delimiter = "/"
	}

	var paths []string
	it := g.client.Bucket(g.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		if attrs.Name == "" {
			continue // synthetic prefix entry
		}
		name := attrs.Name
		if g.prefix != "" {
			name = strings.TrimPrefix(name, g.prefix+"/")
		}
		paths = append(paths, name)
	}
	return paths, nil
}

// FileExists checks whether an object exists in the bucket
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	obj := g.client.Bucket(g.bucket).Object(g.objectPath(filePath))
	_, err := obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
