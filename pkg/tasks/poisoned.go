package tasks

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/millie-ai/millie/pkg/models"
)

var _ models.Task = &PoisonedTask{}

// PoisonedTask logs messages that were given up on. It never fails, so a
// poisoned message is never redelivered.
type PoisonedTask struct {
	BaseTask
}

func NewPoisonedTask(appState *models.AppState) *PoisonedTask {
	return &PoisonedTask{
		BaseTask: BaseTask{
			appState: appState,
		},
	}
}

func (t *PoisonedTask) Execute(_ context.Context, msg *message.Message) error {
	log.Errorf(
		"dropped %s task %s after %d retries: %s",
		msg.Metadata.Get(middleware.PoisonedTopicKey),
		msg.UUID,
		MaxQueueRetries,
		msg.Metadata.Get(middleware.ReasonForPoisonedKey),
	)
	return nil
}
