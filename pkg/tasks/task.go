package tasks

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/models"
)

var log = internal.GetLogger()

type BaseTask struct {
	appState *models.AppState
}

func (b *BaseTask) Execute(
	ctx context.Context, // nolint: revive
	msg *message.Message, // nolint: revive
) error {
	return nil
}

func (b *BaseTask) HandleError(err error) {
	log.Errorf("Task HandleError error: %s", err)
}

// Initialize registers every task handler with router.
func Initialize(ctx context.Context, appState *models.AppState, router models.TaskRouter) {
	log.Info("Initializing tasks")

	router.AddTask(
		ctx,
		string(models.KnowledgeWritebackTopic),
		models.KnowledgeWritebackTopic,
		NewKnowledgeWriteTask(appState),
	)
	log.Infof("%s task added to task router", models.KnowledgeWritebackTopic)

	router.AddTask(
		ctx,
		string(models.PoisonedTopic),
		models.PoisonedTopic,
		NewPoisonedTask(appState),
	)
}
