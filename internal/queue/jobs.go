package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// IndexBillTask is scheduled once per candidate bill by the enqueue
	// command.
	IndexBillTask = "bill:index"
	// Queue is the asynq queue the indexing worker listens on.
	Queue = "indexing"
)

// IndexPayload is serialized into the task payload so the worker knows which
// bill to rebuild.
type IndexPayload struct {
	BillID  string `json:"bill_id"`
	Session int    `json:"session"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewIndexTask builds the task for one bill. The task id is derived from
// the bill id so the same bill cannot be queued twice at once.
func NewIndexTask(payload IndexPayload, retries int) (*asynq.Task, error) {
	if payload.BillID == "" {
		return nil, errors.New("index task needs a bill id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(IndexBillTask, data,
		asynq.TaskID(TaskID(payload.BillID)),
		asynq.Queue(Queue),
		asynq.MaxRetry(retries),
	), nil
}

// TaskID is the unique task id used for a bill.
func TaskID(billID string) string {
	return IndexBillTask + ":" + billID
}

// ParseIndexPayload decodes a task payload.
func ParseIndexPayload(task *asynq.Task) (IndexPayload, error) {
	var payload IndexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	if payload.BillID == "" {
		return payload, errors.New("payload has no bill id")
	}
	return payload, nil
}

// Enqueuer is the part of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Inspector is the part of *asynq.Inspector used to resolve task id
// conflicts.
type Inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// Outcome describes what EnqueueIndex did with a bill.
type Outcome string

const (
	// Queued means a new task was scheduled.
	Queued Outcome = "queued"
	// Requeued means an archived task for the bill was replaced.
	Requeued Outcome = "requeued"
	// Pending means a task for the bill is still waiting, retrying or
	// running, so nothing was scheduled.
	Pending Outcome = "pending"
)

// EnqueueIndex enqueues a bill indexing job. A task id conflict with an
// archived task (one that exhausted its retries) deletes the old task and
// schedules a fresh one; any other conflict leaves the existing task alone.
func EnqueueIndex(ctx context.Context, client Enqueuer, inspector Inspector, payload IndexPayload, retries int) (Outcome, error) {
	task, err := NewIndexTask(payload, retries)
	if err != nil {
		return "", err
	}
	_, err = client.EnqueueContext(ctx, task)
	if err == nil {
		return Queued, nil
	}
	if !errors.Is(err, asynq.ErrTaskIDConflict) {
		return "", fmt.Errorf("enqueue index task: %w", err)
	}

	id := TaskID(payload.BillID)
	info, err := inspector.GetTaskInfo(Queue, id)
	if err != nil {
		return "", fmt.Errorf("inspect task %s: %w", id, err)
	}
	if info.State != asynq.TaskStateArchived {
		return Pending, nil
	}
	if err := inspector.DeleteTask(Queue, id); err != nil {
		return "", fmt.Errorf("delete archived task %s: %w", id, err)
	}
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		return "", fmt.Errorf("requeue index task: %w", err)
	}
	return Requeued, nil
}
