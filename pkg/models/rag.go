package models

import (
	"context"
	"time"
)

// Assistant answers the latest user turn of a conversation.
type Assistant interface {
	Answer(ctx context.Context, history []ChatMessage) (string, error)
}

type Ingestor interface {
	IngestTranscript(ctx context.Context, text string, date time.Time) (*TranscriptMeta, error)
	IngestCollective(ctx context.Context, text, kind string, date time.Time) (int, error)
}
