package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

func TestIndexTaskRoundTrip(t *testing.T) {
	task, err := NewIndexTask(IndexPayload{BillID: "hr1-113", Session: 113}, 3)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != IndexBillTask {
		t.Fatalf("type %s", task.Type())
	}
	payload, err := ParseIndexPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.BillID != "hr1-113" || payload.Session != 113 {
		t.Fatalf("payload %+v", payload)
	}
}

func TestIndexTaskRequiresBill(t *testing.T) {
	if _, err := NewIndexTask(IndexPayload{}, 1); err == nil {
		t.Fatal("expected error for empty bill id")
	}
	if _, err := ParseIndexPayload(asynq.NewTask(IndexBillTask, []byte(`{"session":113}`))); err == nil {
		t.Fatal("expected error for payload without bill id")
	}
}

func TestTaskID(t *testing.T) {
	if got := TaskID("s5-112"); got != "bill:index:s5-112" {
		t.Fatalf("task id %s", got)
	}
}

type fakeClient struct {
	errs  []error
	calls int
}

func (c *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.calls++
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeInspector struct {
	state   asynq.TaskState
	deleted []string
}

func (i *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{ID: id, Queue: queue, State: i.state}, nil
}

func (i *fakeInspector) DeleteTask(_, id string) error {
	i.deleted = append(i.deleted, id)
	return nil
}

func TestEnqueueIndexOutcomes(t *testing.T) {
	payload := IndexPayload{BillID: "hr1-113", Session: 113}
	cases := []struct {
		name        string
		errs        []error
		state       asynq.TaskState
		want        Outcome
		wantCalls   int
		wantDeleted int
	}{
		{name: "new task", want: Queued, wantCalls: 1},
		{name: "still pending", errs: []error{asynq.ErrTaskIDConflict}, state: asynq.TaskStatePending, want: Pending, wantCalls: 1},
		{name: "retrying", errs: []error{asynq.ErrTaskIDConflict}, state: asynq.TaskStateRetry, want: Pending, wantCalls: 1},
		{name: "archived", errs: []error{asynq.ErrTaskIDConflict, nil}, state: asynq.TaskStateArchived, want: Requeued, wantCalls: 2, wantDeleted: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{errs: tc.errs}
			inspector := &fakeInspector{state: tc.state}
			got, err := EnqueueIndex(context.Background(), client, inspector, payload, 3)
			if err != nil {
				t.Fatalf("enqueue: %v", err)
			}
			if got != tc.want {
				t.Fatalf("outcome %s, want %s", got, tc.want)
			}
			if client.calls != tc.wantCalls {
				t.Fatalf("enqueue calls %d, want %d", client.calls, tc.wantCalls)
			}
			if len(inspector.deleted) != tc.wantDeleted {
				t.Fatalf("deleted %v", inspector.deleted)
			}
			if tc.wantDeleted > 0 && inspector.deleted[0] != TaskID("hr1-113") {
				t.Fatalf("deleted wrong task %v", inspector.deleted)
			}
		})
	}
}

func TestEnqueueIndexOtherErrors(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("redis down")}}
	if _, err := EnqueueIndex(context.Background(), client, &fakeInspector{}, IndexPayload{BillID: "hr1-113"}, 1); err == nil {
		t.Fatal("expected enqueue error")
	}
}
