package scheduler

import (
	"context"
	"fmt"

	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// TicketProcessor runs one ticket evaluation; implemented by the tickets
// service.
type TicketProcessor interface {
	Process(ctx context.Context, ticketID string) error
}

// TicketProcessorFunc adapts a plain function to TicketProcessor.
type TicketProcessorFunc func(ctx context.Context, ticketID string) error

func (f TicketProcessorFunc) Process(ctx context.Context, ticketID string) error {
	return f(ctx, ticketID)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor TicketProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor TicketProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		log:       log,
	}

	mux.HandleFunc(TaskTicketProcess, w.handleTicketProcess)
	mux.HandleFunc(TaskTicketReprocess, w.handleTicketProcess)

	return w, nil
}

func (w *Worker) handleTicketProcess(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTicketProcessPayload(task)
	if err != nil {
		return err
	}
	if payload.TicketID == "" {
		// Malformed payload; retrying cannot fix it.
		return nil
	}

	err = w.processor.Process(ctx, payload.TicketID)
	w.log.TaskEvent(task.Type(), payload.TicketID, err)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
