package services

import (
	"context"
	"io"
)

// ImageStore persists an uploaded image and returns the URL it is served from.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// EventPublisher delivers a domain event. Publishing is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, message []byte) error
}

// MetricsRecorder counts business events.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// PasswordHasher derives and verifies password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, isAdmin bool) (string, error)
}

// ImageFile is an uploaded image handed to the catalog.
type ImageFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}
