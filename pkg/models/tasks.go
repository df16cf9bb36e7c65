package models

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

type TaskTopic string

const (
	KnowledgeWritebackTopic TaskTopic = "knowledge_writeback"
	// PoisonedTopic receives messages whose handler kept failing after retries
	PoisonedTopic TaskTopic = "poisoned"
)

type Task interface {
	Execute(ctx context.Context, event *message.Message) error
	HandleError(err error)
}

type TaskRouter interface {
	Run(ctx context.Context) error
	AddTask(ctx context.Context, name string, taskType TaskTopic, task Task)
	Running() chan struct{}
	Close() error
}

type TaskPublisher interface {
	Publish(taskType TaskTopic, metadata map[string]string, payload any) error
	Close() error
}

// KnowledgeTask is the payload of a knowledge write-back task.
type KnowledgeTask struct {
	Text string `json:"text"`
}
