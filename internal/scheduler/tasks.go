// Package scheduler queues and runs asynchronous ticket evaluations on
// asynq. The webhook intake enqueues; the worker binary consumes.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskTicketProcess evaluates one helpdesk ticket end to end.
const TaskTicketProcess = "tickets.process"

// TaskTicketReprocess re-evaluates a ticket after a human cleared an
// escalation; same pipeline, separate name so queue metrics tell them apart.
const TaskTicketReprocess = "tickets.reprocess"

type TicketProcessPayload struct {
	TicketID string `json:"ticketId"`
}

func NewTicketProcessTask(payload TicketProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketProcess, data), nil
}

func NewTicketReprocessTask(payload TicketProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketReprocess, data), nil
}

func ParseTicketProcessPayload(task *asynq.Task) (TicketProcessPayload, error) {
	var payload TicketProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TicketProcessPayload{}, err
	}
	return payload, nil
}
