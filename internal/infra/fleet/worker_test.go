package fleet_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/bot"
	"botfleet/internal/infra/authstore"
	"botfleet/internal/infra/fleet"
	"botfleet/pkg/logger"
)

type recordedEvent struct {
	botID  bot.ID
	status bot.Status
	reason fleet.DisconnectReason
}

func newTestWorker(t *testing.T) (*fleet.Worker, *[]recordedEvent) {
	t.Helper()
	var mu sync.Mutex
	var events []recordedEvent

	id := bot.NewID()
	root := authstore.NewRoot(t.TempDir())
	w := fleet.NewWorker(id, "acme", nil, root, &logger.NoopLogger{}, func(botID bot.ID, status bot.Status, reason fleet.DisconnectReason) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, recordedEvent{botID, status, reason})
	})
	return w, &events
}

func TestWorker_StartsOffline(t *testing.T) {
	w, _ := newTestWorker(t)
	assert.Equal(t, bot.StatusOffline, w.Status())
}

func TestWorker_StopOnFreshWorkerIsNoop(t *testing.T) {
	w, _ := newTestWorker(t)
	require.NoError(t, w.Stop(context.Background()))
	assert.Equal(t, bot.StatusOffline, w.Status())
}

func TestWorker_OnConnectedTransitionsOnlineAndFiresEvent(t *testing.T) {
	w, events := newTestWorker(t)

	w.OnConnected(bot.NewID(), "5511999990000:1@s.whatsapp.net")

	assert.Equal(t, bot.StatusOnline, w.Status())
	require.Len(t, *events, 1)
	assert.Equal(t, bot.StatusOnline, (*events)[0].status)
}

func TestWorker_OnDisconnectedClassifiesReason(t *testing.T) {
	w, events := newTestWorker(t)
	w.OnConnected(bot.NewID(), "jid")

	w.OnDisconnected(bot.NewID(), "logged out")

	assert.Equal(t, bot.StatusOffline, w.Status())
	require.Len(t, *events, 2)
	assert.Equal(t, fleet.ReasonAuthFailed, (*events)[1].reason)
}

func TestWorker_OnAuthenticationFailedSetsError(t *testing.T) {
	w, events := newTestWorker(t)

	w.OnAuthenticationFailed(bot.NewID(), "device removed")

	assert.Equal(t, bot.StatusError, w.Status())
	require.Len(t, *events, 1)
	assert.Equal(t, bot.StatusError, (*events)[0].status)
}

func TestWorker_DestroyRemovesContainerDirectory(t *testing.T) {
	id := bot.NewID()
	root := authstore.NewRoot(t.TempDir())
	w := fleet.NewWorker(id, "acme", nil, root, &logger.NoopLogger{}, nil)
	_, err := root.Ensure("acme", id.String())
	require.NoError(t, err)
	require.True(t, root.Exists("acme", id.String()))

	require.NoError(t, w.Destroy(context.Background()))
	assert.Equal(t, bot.StatusOffline, w.Status())
	assert.False(t, root.Exists("acme", id.String()))
}

func TestWorker_SendMessageFailsWhenNotOnline(t *testing.T) {
	w, _ := newTestWorker(t)
	err := w.SendMessage(context.Background(), "5511999990000", "hi")
	assert.Error(t, err)
}
