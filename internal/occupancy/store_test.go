package occupancy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lmcalvo/cine-checkout/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreReplace(t *testing.T) {
	tests := []struct {
		name       string
		codes      []string
		setupMocks func(client *mocks.MockRedisClient, pipe *mocks.MockTxPipeline)
		wantErr    bool
	}{
		{
			name:  "replaces the whole set in one transaction",
			codes: []string{"B1"},
			setupMocks: func(client *mocks.MockRedisClient, pipe *mocks.MockTxPipeline) {
				client.On("TxPipeline").Return(pipe)
				pipe.On("Del", mock.Anything, []string{"occupancy:codes:7"}).Return(redis.NewIntCmd(context.Background()))
				pipe.On("SAdd", mock.Anything, "occupancy:codes:7", []interface{}{"B1"}).Return(redis.NewIntCmd(context.Background()))
				pipe.On("Expire", mock.Anything, "occupancy:codes:7", snapshotTTL).Return(redis.NewBoolCmd(context.Background()))
				pipe.On("Set", mock.Anything, "occupancy:updated:7", mock.Anything, snapshotTTL).Return(redis.NewStatusCmd(context.Background()))
				pipe.On("Exec", mock.Anything).Return([]redis.Cmder{}, nil)
			},
		},
		{
			name:  "an empty snapshot clears the set without re-adding",
			codes: nil,
			setupMocks: func(client *mocks.MockRedisClient, pipe *mocks.MockTxPipeline) {
				client.On("TxPipeline").Return(pipe)
				pipe.On("Del", mock.Anything, []string{"occupancy:codes:7"}).Return(redis.NewIntCmd(context.Background()))
				pipe.On("Set", mock.Anything, "occupancy:updated:7", mock.Anything, snapshotTTL).Return(redis.NewStatusCmd(context.Background()))
				pipe.On("Exec", mock.Anything).Return([]redis.Cmder{}, nil)
			},
		},
		{
			name:  "propagates pipeline failure",
			codes: []string{"A1"},
			setupMocks: func(client *mocks.MockRedisClient, pipe *mocks.MockTxPipeline) {
				client.On("TxPipeline").Return(pipe)
				pipe.On("Del", mock.Anything, []string{"occupancy:codes:7"}).Return(redis.NewIntCmd(context.Background()))
				pipe.On("SAdd", mock.Anything, "occupancy:codes:7", []interface{}{"A1"}).Return(redis.NewIntCmd(context.Background()))
				pipe.On("Expire", mock.Anything, "occupancy:codes:7", snapshotTTL).Return(redis.NewBoolCmd(context.Background()))
				pipe.On("Set", mock.Anything, "occupancy:updated:7", mock.Anything, snapshotTTL).Return(redis.NewStatusCmd(context.Background()))
				pipe.On("Exec", mock.Anything).Return(nil, fmt.Errorf("redis error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockRedisClient)
			pipe := new(mocks.MockTxPipeline)
			tt.setupMocks(client, pipe)

			store := NewRedisStore(client)
			err := store.Replace(context.Background(), 7, tt.codes)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			client.AssertExpectations(t)
			pipe.AssertExpectations(t)
		})
	}
}

func TestRedisStoreSnapshot(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	client := new(mocks.MockRedisClient)
	client.On("SMembers", mock.Anything, "occupancy:codes:7").
		Return(redis.NewStringSliceResult([]string{"A1", "A2"}, nil))
	client.On("Get", mock.Anything, "occupancy:updated:7").
		Return(redis.NewStringResult(now.Format(time.RFC3339Nano), nil))

	store := NewRedisStore(client)
	codes, updatedAt, err := store.Snapshot(context.Background(), 7)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "A2"}, codes)
	assert.True(t, updatedAt.Equal(now))
}

func TestRedisStoreSnapshotMissingTimestamp(t *testing.T) {
	client := new(mocks.MockRedisClient)
	client.On("SMembers", mock.Anything, "occupancy:codes:7").
		Return(redis.NewStringSliceResult(nil, nil))
	client.On("Get", mock.Anything, "occupancy:updated:7").
		Return(redis.NewStringResult("", redis.Nil))

	store := NewRedisStore(client)
	codes, updatedAt, err := store.Snapshot(context.Background(), 7)

	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.True(t, updatedAt.IsZero())
}
