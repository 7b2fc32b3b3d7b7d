package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "tickets" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 2 }

func TestEnqueueTicketProcess(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueTicketProcess(context.Background(), "tk-42"); err != nil {
		t.Fatalf("EnqueueTicketProcess: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("tickets")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(pending))
	}
	if pending[0].Type != TaskTicketProcess {
		t.Errorf("task type = %q, want %q", pending[0].Type, TaskTicketProcess)
	}

	var payload TicketProcessPayload
	if err := json.Unmarshal(pending[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.TicketID != "tk-42" {
		t.Errorf("ticket ID = %q, want tk-42", payload.TicketID)
	}
}

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected an error without a redis url")
	}
}

func TestParseTicketProcessPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskTicketProcess, []byte("not json"))
	if _, err := ParseTicketProcessPayload(task); err == nil {
		t.Fatal("expected a parse error")
	}
}
