package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/audit/store/memory"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, audit.Event) error {
	return s.err
}

type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	<-s.release
	return nil
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Action:       string(audit.EventCredentialIssued),
		CredentialID: 1001,
	})
	require.NoError(t, err)

	events, err := store.ListByCredential(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCredentialIssued), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(context.Background(), audit.Event{CredentialID: 5, Timestamp: customTime}))

	events, err := store.ListByCredential(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_EmitReturnsError(t *testing.T) {
	storeErr := errors.New("append failed")
	pub := NewPublisher(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventCredentialRevoked)})
	require.ErrorIs(t, err, storeErr)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	ctx, cancel := context.WithCancel(context.Background())
	for range 3 {
		require.NoError(t, pub.Emit(ctx, audit.Event{CredentialID: 7}))
	}
	cancel()
	pub.Close()

	events, err := store.ListByCredential(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestPublisher_AsyncBufferFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	// One event is picked up by the writer and blocks, one fills the buffer.
	var err error
	for range 5 {
		if err = pub.Emit(context.Background(), audit.Event{CredentialID: 1}); err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	close(store.release)
	pub.Close()
}
