package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreLoadStep(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *redis.StringCmd
		wantData []byte
		wantOk   bool
		wantErr  bool
	}{
		{
			name:     "stored step",
			cmd:      redis.NewStringResult(`["G12"]`, nil),
			wantData: []byte(`["G12"]`),
			wantOk:   true,
		},
		{
			name: "missing step",
			cmd:  redis.NewStringResult("", redis.Nil),
		},
		{
			name:    "redis failure",
			cmd:     redis.NewStringResult("", mocks.MockRedisError{Msg: "connection refused"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockRedisClient)
			client.On("HGet", mock.Anything, "ev:run:fn:evt-1", "check").Return(tt.cmd)

			store := NewRedisStore(client, "ev")

			data, ok, err := store.LoadStep(context.Background(), "fn:evt-1", "check")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantData, data)
			client.AssertExpectations(t)
		})
	}
}

func TestRedisStoreSaveStep(t *testing.T) {
	client := new(mocks.MockRedisClient)
	pipe := new(mocks.MockTxPipeline)

	data := []byte(`{"released":true}`)

	client.On("TxPipeline").Return(pipe)
	pipe.On("HSet", mock.Anything, "ev:run:fn:evt-1", []interface{}{"check", data}).Return(redis.NewIntResult(1, nil))
	pipe.On("Expire", mock.Anything, "ev:run:fn:evt-1", runTTL).Return(redis.NewBoolResult(true, nil))
	pipe.On("Exec", mock.Anything).Return([]redis.Cmder{}, nil)

	store := NewRedisStore(client, "ev")

	err := store.SaveStep(context.Background(), "fn:evt-1", "check", data)
	require.NoError(t, err)

	client.AssertExpectations(t)
	pipe.AssertExpectations(t)
}

func TestRedisStoreDueUsesLeaseScore(t *testing.T) {
	client := new(mocks.MockRedisClient)

	scheduledAt := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	leasedUntil := scheduledAt.Add(15 * time.Minute)

	member, err := json.Marshal(Task{ID: "t-1", FunctionID: "fn", RunID: "fn:evt-1", At: scheduledAt})
	require.NoError(t, err)

	client.On("ZRangeByScoreWithScores", mock.Anything, "ev:tasks", &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "1748766600000",
		Count: 10,
	}).Return(redis.NewZSliceCmdResult([]redis.Z{
		{Score: float64(leasedUntil.UnixMilli()), Member: string(member)},
		{Score: 1, Member: "not json"},
	}, nil))
	client.On("ZRem", mock.Anything, "ev:tasks", []interface{}{"not json"}).Return(redis.NewIntResult(1, nil))

	store := NewRedisStore(client, "ev")

	tasks, err := store.Due(context.Background(), time.UnixMilli(1748766600000), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, "t-1", tasks[0].ID)
	assert.True(t, tasks[0].At.Equal(leasedUntil))
	assert.Equal(t, string(member), tasks[0].raw)
	client.AssertExpectations(t)
}

func TestRedisStoreClaim(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	leaseUntil := at.Add(15 * time.Minute)
	task := Task{ID: "t-1", At: at, raw: `{"id":"t-1"}`}

	tests := []struct {
		name   string
		result int64
		want   bool
	}{
		{name: "claimed", result: 1, want: true},
		{name: "taken by another worker", result: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockRedisClient)
			client.On("EvalSha",
				mock.Anything,
				claimTaskScript.Hash(),
				[]string{"ev:tasks"},
				`{"id":"t-1"}`,
				at.UnixMilli(),
				leaseUntil.UnixMilli(),
			).Return(redis.NewCmdResult(tt.result, nil))

			store := NewRedisStore(client, "ev")

			ok, err := store.Claim(context.Background(), task, leaseUntil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			client.AssertExpectations(t)
		})
	}
}

func TestRedisStoreCompleteAndAcquire(t *testing.T) {
	client := new(mocks.MockRedisClient)
	client.On("ZRem", mock.Anything, "ev:tasks", []interface{}{`{"id":"t-1"}`}).Return(redis.NewIntResult(1, nil))
	client.On("SetNX", mock.Anything, "ev:lock:cron:reminders:1", 1, time.Hour).Return(redis.NewBoolResult(false, nil))

	store := NewRedisStore(client, "ev")

	require.NoError(t, store.Complete(context.Background(), Task{ID: "t-1", raw: `{"id":"t-1"}`}))

	ok, err := store.Acquire(context.Background(), "cron:reminders:1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	client.AssertExpectations(t)
}
