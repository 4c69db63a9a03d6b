package adapters

import "context"

// BlobMetadata travels with the file bytes into the blob store so the
// stored object can be identified without reading it back.
type BlobMetadata struct {
	Filename    string
	ContentType string
	UploadedBy  string
}

// BlobStore persists opaque file bytes and returns a stable URL for them.
// Document storage itself lives outside this service; document-reference
// fields on the canonical record hold only the returned URL.
type BlobStore interface {
	Store(ctx context.Context, data []byte, meta BlobMetadata) (string, error)
}
