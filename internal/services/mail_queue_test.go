package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSyncQueue_ProcessesTask(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var processed []uint
	done := make(chan struct{})

	queue.SetProcessor(func(ctx context.Context, task *EmailTask) error {
		mu.Lock()
		processed = append(processed, task.InvitationID)
		mu.Unlock()
		close(done)
		return nil
	})

	if err := queue.Enqueue(&EmailTask{InvitationID: 7}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(processed) != 1 || processed[0] != 7 {
		t.Errorf("processed = %v, expected [7]", processed)
	}
}

func TestSyncQueue_NoProcessorDropsTask(t *testing.T) {
	queue := NewSyncQueue()

	if err := queue.Enqueue(&EmailTask{InvitationID: 1}); err != nil {
		t.Errorf("Enqueue() without processor error = %v, expected nil", err)
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	if NewSyncQueue().IsAsync() {
		t.Error("SyncQueue.IsAsync() should be false")
	}
}

func TestTaskTypeInviteEmail_Constant(t *testing.T) {
	if TaskTypeInviteEmail != "email:invitation" {
		t.Errorf("TaskTypeInviteEmail = %q, expected %q", TaskTypeInviteEmail, "email:invitation")
	}
}
