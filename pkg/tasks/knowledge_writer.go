package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/millie-ai/millie/pkg/models"
)

var _ models.Task = &KnowledgeWriteTask{}

// KnowledgeWriteTask embeds a queued text and commits it to the vector store.
type KnowledgeWriteTask struct {
	BaseTask
}

func NewKnowledgeWriteTask(appState *models.AppState) *KnowledgeWriteTask {
	return &KnowledgeWriteTask{
		BaseTask: BaseTask{
			appState: appState,
		},
	}
}

func (t *KnowledgeWriteTask) Execute(
	ctx context.Context,
	msg *message.Message,
) error {
	ctx, done := context.WithTimeout(ctx, TaskTimeout)
	defer done()

	var task models.KnowledgeTask
	if err := json.Unmarshal(msg.Payload, &task); err != nil {
		return fmt.Errorf("KnowledgeWriteTask unmarshal failed: %w", err)
	}
	if task.Text == "" {
		return errors.New("KnowledgeWriteTask text is empty")
	}

	if err := t.appState.VectorStore.Remember(ctx, task.Text); err != nil {
		return fmt.Errorf("KnowledgeWriteTask remember failed: %w", err)
	}

	log.Debugf("KnowledgeWriteTask stored %s from %s", msg.UUID, msg.Metadata.Get("source"))

	return nil
}

var _ models.KnowledgeWriter = &KnowledgePublisher{}

// KnowledgePublisher queues texts for KnowledgeWriteTask instead of writing
// them inline.
type KnowledgePublisher struct {
	publisher models.TaskPublisher
	source    string
}

func NewKnowledgePublisher(publisher models.TaskPublisher, source string) *KnowledgePublisher {
	return &KnowledgePublisher{publisher: publisher, source: source}
}

func (p *KnowledgePublisher) Remember(_ context.Context, text string) error {
	return p.publisher.Publish(
		models.KnowledgeWritebackTopic,
		map[string]string{"source": p.source},
		models.KnowledgeTask{Text: text},
	)
}
