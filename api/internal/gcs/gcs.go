package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const Scheme = "gs://"

// ObjectIterator is satisfied by *storage.ObjectIterator.
type ObjectIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

// Bucketer enumerates objects of a bucket.
type Bucketer interface {
	Objects(ctx context.Context, bucket, prefix string) (ObjectIterator, error)
}

// Client wraps a lazily created *storage.Client so that a construction
// failure is reported by the first call that needs it.
type Client struct {
	opts []option.ClientOption

	once sync.Once
	sc   *storage.Client
	err  error
}

func New(opts ...option.ClientOption) *Client {
	return &Client{opts: opts}
}

func (c *Client) storage(ctx context.Context) (*storage.Client, error) {
	c.once.Do(func() {
		c.sc, c.err = storage.NewClient(ctx, c.opts...)
		if c.err != nil {
			c.err = fmt.Errorf("storage client: %w", c.err)
		}
	})
	return c.sc, c.err
}

func (c *Client) Objects(ctx context.Context, bucket, prefix string) (ObjectIterator, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket name is empty")
	}
	sc, err := c.storage(ctx)
	if err != nil {
		return nil, err
	}
	return sc.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix}), nil
}

// ReadObject downloads the whole object into memory.
func (c *Client) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	sc, err := c.storage(ctx)
	if err != nil {
		return nil, err
	}
	r, err := sc.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", URI(bucket, object), err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", URI(bucket, object), err)
	}
	return b, nil
}

func (c *Client) Close() error {
	if c.sc == nil {
		return nil
	}
	return c.sc.Close()
}

func URI(bucket, object string) string {
	return Scheme + bucket + "/" + object
}

// ParseURI splits gs://bucket/object. Both parts must be non-empty.
func ParseURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, Scheme)
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
