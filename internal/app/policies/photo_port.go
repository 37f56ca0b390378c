package policies

import (
	"context"
	"io"
)

type PhotoUpload struct {
	ListingID   string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PhotoStore persists listing photos in object storage and returns a public
// URL for the stored object.
type PhotoStore interface {
	Store(ctx context.Context, upload PhotoUpload) (string, error)
}
