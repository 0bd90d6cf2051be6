package gcs

import (
	"context"
	"errors"
	"log"
	"strings"

	"google.golang.org/api/iterator"

	"gcs-extract/api/internal/logger"
)

var imageExts = []string{".jpg", ".jpeg", ".png"}

type Lister struct {
	objects Bucketer
}

func NewLister(objects Bucketer) *Lister {
	return &Lister{objects: objects}
}

// List returns locators of the image objects under prefix in backend order.
// Any backend failure is logged and yields an empty result.
func (l *Lister) List(ctx context.Context, bucket, prefix string) []string {
	it, err := l.objects.Objects(ctx, bucket, prefix)
	if err != nil {
		log.Printf("Error listing images in bucket %s: %v", bucket, err)
		return []string{}
	}

	paths := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			log.Printf("Error listing images in bucket %s: %v", bucket, err)
			return []string{}
		}
		if !IsImage(attrs.Name) {
			logger.DebugLog("[List]: skipping %s", attrs.Name)
			continue
		}
		paths = append(paths, URI(bucket, attrs.Name))
	}
	logger.DebugLog("[List]: %d images in %s (prefix=%q)", len(paths), bucket, prefix)
	return paths
}

// IsImage reports whether an object name looks like a supported image and not
// a directory marker.
func IsImage(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	lower := strings.ToLower(name)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
