package convert

import (
	"context"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
)

// TokenSource turns a document on disk into positioned tokens.
//
//go:generate mockgen -destination=mocks/mock_source.go -source=source.go TokenSource
type TokenSource interface {
	Tokens(ctx context.Context, path string) (extractor.Document, error)
}
