package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateProgress, true},
		{StatePending, StateSuccess, true},
		{StatePending, StateFailure, true},
		{StatePending, StatePending, false},
		{StateProgress, StateProgress, true},
		{StateProgress, StateSuccess, true},
		{StateProgress, StateFailure, true},
		{StateProgress, StatePending, false},
		{StateSuccess, StateFailure, false},
		{StateSuccess, StateProgress, false},
		{StateFailure, StateSuccess, false},
		{StateFailure, StatePending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestJobMarkers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("progress overwrites previous report", func(t *testing.T) {
		j := &Job{ID: "j1", State: StatePending}
		require.NoError(t, j.MarkProgress(Progress{Current: 0, Total: 100, Status: "a"}, now))
		require.NoError(t, j.MarkProgress(Progress{Current: 50, Total: 100, Status: "b"}, now))
		assert.Equal(t, StateProgress, j.State)
		assert.Equal(t, &Progress{Current: 50, Total: 100, Status: "b"}, j.Progress)
	})

	t.Run("success clears progress and sets result", func(t *testing.T) {
		j := &Job{ID: "j2", State: StatePending}
		require.NoError(t, j.MarkProgress(Progress{Current: 1, Total: 2}, now))
		require.NoError(t, j.MarkSuccess(json.RawMessage(`{"ok":true}`), now))
		assert.Nil(t, j.Progress)
		assert.Nil(t, j.Error)
		assert.JSONEq(t, `{"ok":true}`, string(j.Result))
		require.NotNil(t, j.CompletedAt)
	})

	t.Run("nil result is stored as JSON null", func(t *testing.T) {
		j := &Job{ID: "j3", State: StatePending}
		require.NoError(t, j.MarkSuccess(nil, now))
		assert.Equal(t, "null", string(j.Result))
	})

	t.Run("terminal state is final", func(t *testing.T) {
		j := &Job{ID: "j4", State: StatePending}
		require.NoError(t, j.MarkFailure(&JobError{Kind: KindHandlerError, Message: "boom"}, now))
		assert.ErrorIs(t, j.MarkSuccess(json.RawMessage(`1`), now), ErrInvalidTransition)
		assert.ErrorIs(t, j.MarkProgress(Progress{}, now), ErrInvalidTransition)
		assert.Equal(t, StateFailure, j.State)
		assert.Nil(t, j.Result)
		assert.Equal(t, "boom", j.Error.Message)
	})
}

func TestArgs(t *testing.T) {
	args, err := NewArgs(42, "a@b.com", map[string]int{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 3, args.Len())

	var id int
	var email string
	var m map[string]int
	require.NoError(t, args.Bind(&id, &email, &m))
	assert.Equal(t, 42, id)
	assert.Equal(t, "a@b.com", email)
	assert.Equal(t, map[string]int{"x": 1}, m)

	assert.Error(t, args.Bind(&id))
	assert.Error(t, args.Decode(5, &id))
	assert.Error(t, args.Decode(1, &id))

	raw, err := json.Marshal(Args(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	raw, err = json.Marshal(args)
	require.NoError(t, err)
	assert.JSONEq(t, `[42,"a@b.com",{"x":1}]`, string(raw))
}

func TestQueueFor(t *testing.T) {
	tests := []struct {
		name    Name
		want    Queue
		wantErr bool
	}{
		{GenerateMemorySuggestions, QueueAI, false},
		{OptimizePalaceLayout, QueueAI, false},
		{SendWelcomeEmail, QueueNotification, false},
		{SendPalaceCreatedNotification, QueueNotification, false},
		{CleanupOldSessions, QueueNotification, false},
		{"tasks.billing.charge", "", true},
		{"tasks.ai", "", true},
		{"ai.generate", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := QueueFor(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTask)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
