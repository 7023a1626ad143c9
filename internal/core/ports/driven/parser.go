package driven

import "context"

// DocumentParser extracts plain text from one file format.
type DocumentParser interface {
	// Parse converts raw file bytes into plain text.
	Parse(ctx context.Context, data []byte) (string, error)

	// MimeTypes returns the MIME types this parser handles.
	MimeTypes() []string
}

// ParserRegistry resolves a parser for a MIME type.
// Unsupported MIME types are rejected at upload time, so a nil lookup in
// the worker is a permanent processing error.
type ParserRegistry interface {
	// Get returns the parser for a MIME type, or nil if none is registered.
	Get(mimeType string) DocumentParser

	// Register adds a parser for its MIME types, replacing any previous one.
	Register(parser DocumentParser)
}
