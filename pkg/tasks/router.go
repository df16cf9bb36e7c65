package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	wla "github.com/ma-hartma/watermill-logrus-adapter"

	"github.com/millie-ai/millie/pkg/models"
)

const (
	TaskCountThrottle = 50 // messages per second
	MaxQueueRetries   = 3
	TaskTimeout       = 60 * time.Second
	// RouterStartTimeout bounds how long RunTaskRouter waits for handlers to subscribe
	RouterStartTimeout = 10 * time.Second
	queueBufferSize    = 256
)

var _ models.TaskRouter = &TaskRouter{}

// TaskRouter is a wrapper around watermill's Router. All handlers subscribe to
// one in-process GoChannel, and each handler receives messages one at a time,
// which makes every handler a single writer.
type TaskRouter struct {
	*message.Router
	pubSub *gochannel.GoChannel
}

// NewPubSub returns the in-process queue shared by the router and publisher.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: queueBufferSize},
		wla.NewLogrusLogger(log),
	)
}

func NewTaskRouter(pubSub *gochannel.GoChannel) (*TaskRouter, error) {
	wlog := wla.NewLogrusLogger(log)

	router, err := message.NewRouter(message.RouterConfig{}, wlog)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(pubSub, string(models.PoisonedTopic))
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.NewThrottle(TaskCountThrottle, time.Second).Middleware,
		// Messages still failing after Retry are moved to the poisoned topic
		// and acked, so the queue moves on.
		poisonQueue,
		middleware.Retry{
			MaxRetries:      MaxQueueRetries,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          wlog,
		}.Middleware,
		// Recoverer turns handler panics into errors for Retry
		middleware.Recoverer,
	)

	return &TaskRouter{
		Router: router,
		pubSub: pubSub,
	}, nil
}

// AddTask adds a task handler to the router.
func (tr *TaskRouter) AddTask(_ context.Context, name string, taskType models.TaskTopic, task models.Task) {
	tr.AddNoPublisherHandler(
		name,
		string(taskType),
		tr.pubSub,
		TaskHandler(task),
	)
}

// Close stops the router, waiting for in-flight handlers, then the queue.
func (tr *TaskRouter) Close() error {
	return errors.Join(tr.Router.Close(), tr.pubSub.Close())
}

// TaskHandler returns a message handler function for the given task.
// Handlers are NoPublishHandlerFuncs i.e. do not publish messages.
func TaskHandler(task models.Task) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		err := task.Execute(msg.Context(), msg)
		if err != nil {
			task.HandleError(err)
			return err
		}
		return nil
	}
}

// RunTaskRouter starts the task router and sets appState.TaskRouter and
// appState.TaskPublisher. It returns once handlers are subscribed, so nothing
// published afterwards is dropped.
func RunTaskRouter(ctx context.Context, appState *models.AppState) error {
	pubSub := NewPubSub()

	router, err := NewTaskRouter(pubSub)
	if err != nil {
		return err
	}
	Initialize(ctx, appState, router)

	appState.TaskRouter = router
	appState.TaskPublisher = NewTaskPublisher(pubSub)

	go func() {
		log.Info("running task router")
		if err := router.Run(ctx); err != nil {
			log.Errorf("task router stopped: %v", err)
		}
	}()

	select {
	case <-router.Running():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(RouterStartTimeout):
		return errors.New("timed out waiting for task router to start")
	}
}
