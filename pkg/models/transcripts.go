package models

import (
	"context"
	"time"
)

// TranscriptMeta describes one ingested weekly meeting transcript.
type TranscriptMeta struct {
	Date           time.Time `json:"date"`
	WeekNumber     int       `json:"weekNumber"`
	Topic          string    `json:"topic"`
	KeyPoints      []string  `json:"keyPoints"`
	MentionedCoins []string  `json:"mentionedCoins"`
	ActionItems    []string  `json:"actionItems"`
	// File is the archive key of the raw transcript text
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// TranscriptSummary is the structured output of the summarization call.
type TranscriptSummary struct {
	Topic          string   `json:"topic"`
	KeyPoints      []string `json:"keyPoints"`
	MentionedCoins []string `json:"mentionedCoins"`
	ActionItems    []string `json:"actionItems"`
}

type CommunityNews struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type CoinOfWeek struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Reason      string `json:"reason"`
	TargetPrice string `json:"targetPrice"`
	Analysis    string `json:"analysis"`
}

// DashboardData is overwritten wholesale by every successful dashboard generation.
type DashboardData struct {
	DailyQuotes   []string        `json:"dailyQuotes"`
	CommunityNews []CommunityNews `json:"communityNews"`
	CoinOfWeek    *CoinOfWeek     `json:"coinOfWeek"`
	LastUpdated   *time.Time      `json:"lastUpdated,omitempty"`
}

// Complete reports whether all three dashboard sections are present.
func (d *DashboardData) Complete() bool {
	return d != nil && d.DailyQuotes != nil && d.CommunityNews != nil && d.CoinOfWeek != nil
}

type UploadType string

const (
	UploadTypeTranscript UploadType = "transcript"
	UploadTypeCollective UploadType = "collective"
	UploadTypeDocument   UploadType = "document"
)

type UploadHistoryEntry struct {
	ID         string         `json:"id"`
	Type       UploadType     `json:"type"`
	UploadedAt time.Time      `json:"uploadedAt"`
	UploadedBy string         `json:"uploadedBy,omitempty"`
	Title      string         `json:"title"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type TranscriptStore interface {
	// List returns all transcripts, most recent meeting first.
	List() ReadResult[[]TranscriptMeta]
	// Latest returns the most recent transcript or a NotFoundError.
	Latest() (*TranscriptMeta, error)
	Append(meta TranscriptMeta) error
}

type DashboardStore interface {
	Get() ReadResult[*DashboardData]
	Put(data *DashboardData) error
	SetDailyQuotes(quotes []string) error
}

type UploadHistoryStore interface {
	List() ReadResult[[]UploadHistoryEntry]
	Add(entry UploadHistoryEntry) (*UploadHistoryEntry, error)
}

type SystemPromptStore interface {
	// Get returns the configured persona prompt, or the built-in default.
	Get() string
	Put(prompt string) error
}

// TranscriptArchive keeps the raw text of every ingested transcript.
type TranscriptArchive interface {
	Put(ctx context.Context, name, text string) error
	Get(ctx context.Context, name string) (string, error)
	Close() error
}
