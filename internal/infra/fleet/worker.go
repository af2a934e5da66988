// Package fleet implements the per-bot worker state machine and the
// supervisor that serializes lifecycle operations across bots.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mau.fi/whatsmeow/store/sqlstore"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/whatsapp"
	"botfleet/internal/infra/authstore"
	"botfleet/internal/infra/whats"
	"botfleet/pkg/logger"
)

// DisconnectReason classifies why a worker's connection ended; it is passed
// to the worker's event callback alongside the new status.
type DisconnectReason int

const (
	ReasonUnknown DisconnectReason = iota
	ReasonAuthFailed
	ReasonClosedRetriable
	ReasonTimedOut
	ReasonBadSession
)

func classifyDisconnect(reason string) DisconnectReason {
	switch reason {
	case "logged out":
		return ReasonAuthFailed
	case "connection lost":
		return ReasonClosedRetriable
	default:
		return ReasonUnknown
	}
}

// Worker owns a single bot's whatsmeow client and its offline -> loading ->
// online -> (offline | error) state machine. A Worker never reaches into
// another bot's container directory and never deletes its own credentials
// except when explicitly destroyed.
type Worker struct {
	botID  bot.ID
	tenant string

	mu     sync.Mutex
	status bot.Status
	client whatsapp.Client

	store     *sqlstore.Container
	authRoot  *authstore.Root
	logger    logger.Logger
	onEvent   func(botID bot.ID, status bot.Status, reason DisconnectReason)
}

// NewWorker creates a worker for the given bot, initially offline.
func NewWorker(botID bot.ID, tenant string, store *sqlstore.Container, authRoot *authstore.Root, log logger.Logger, onEvent func(bot.ID, bot.Status, DisconnectReason)) *Worker {
	return &Worker{
		botID:    botID,
		tenant:   tenant,
		status:   bot.StatusOffline,
		store:    store,
		authRoot: authRoot,
		logger:   log,
		onEvent:  onEvent,
	}
}

// Status returns the worker's current runtime status.
func (w *Worker) Status() bot.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Start brings the worker online. It is idempotent: calling Start on an
// already loading or online worker is a no-op.
func (w *Worker) Start(ctx context.Context, credentials []byte, savedJID string) error {
	w.mu.Lock()
	if w.status == bot.StatusLoading || w.status == bot.StatusOnline {
		w.mu.Unlock()
		return nil
	}
	w.status = bot.StatusLoading
	w.mu.Unlock()

	if err := w.materializeCredentials(credentials); err != nil {
		w.setStatus(bot.StatusError)
		return fmt.Errorf("materialize credentials: %w", err)
	}

	client, err := whats.NewClient(w.botID, w.store, savedJID, "", w.logger)
	if err != nil {
		w.setStatus(bot.StatusError)
		return fmt.Errorf("create whatsapp client: %w", err)
	}
	client.SetEventHandler(w)

	w.mu.Lock()
	w.client = client
	w.mu.Unlock()

	if _, err := client.Connect(ctx); err != nil {
		w.setStatus(bot.StatusError)
		return fmt.Errorf("connect: %w", err)
	}

	return nil
}

// materializeCredentials writes the raw credential blob into the bot's
// container directory if it is not already present there. It never
// touches any other bot's directory.
func (w *Worker) materializeCredentials(credentials []byte) error {
	path, err := w.authRoot.Ensure(w.tenant, w.botID.String())
	if err != nil {
		return err
	}
	credsPath := w.authRoot.CredentialsPath(w.tenant, w.botID.String())
	if _, err := os.Stat(credsPath); err == nil {
		return nil
	}
	_ = path
	return os.WriteFile(credsPath, credentials, 0o600)
}

// Stop gracefully disconnects the worker without deleting its materialized
// credentials. Idempotent on an already-offline worker.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	client := w.client
	alreadyOffline := w.status == bot.StatusOffline && client == nil
	w.mu.Unlock()

	if alreadyOffline {
		return nil
	}

	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			w.logger.WarnWithError("error disconnecting worker", err, logger.Fields{
				"bot_id": w.botID.String(),
			})
		}
		_ = client.Close()
	}

	w.mu.Lock()
	w.client = nil
	w.status = bot.StatusOffline
	w.mu.Unlock()

	return nil
}

// Destroy stops the worker and permanently removes its container
// directory and materialized credentials.
func (w *Worker) Destroy(ctx context.Context) error {
	if err := w.Stop(ctx); err != nil {
		return err
	}
	return w.authRoot.Remove(w.tenant, w.botID.String())
}

// SendMessage delivers a text message through the worker's live client.
func (w *Worker) SendMessage(ctx context.Context, to, message string) error {
	w.mu.Lock()
	client := w.client
	status := w.status
	w.mu.Unlock()

	if status != bot.StatusOnline || client == nil {
		return fmt.Errorf("worker %s is not online", w.botID.String())
	}
	return client.SendMessage(ctx, to, message)
}

func (w *Worker) setStatus(s bot.Status) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

// --- whatsapp.EventHandler ---

func (w *Worker) OnConnected(botID bot.ID, jid string) {
	w.setStatus(bot.StatusOnline)
	if w.onEvent != nil {
		w.onEvent(w.botID, bot.StatusOnline, ReasonUnknown)
	}
}

func (w *Worker) OnDisconnected(botID bot.ID, reason string) {
	w.setStatus(bot.StatusOffline)
	if w.onEvent != nil {
		w.onEvent(w.botID, bot.StatusOffline, classifyDisconnect(reason))
	}
}

func (w *Worker) OnQRCode(botID bot.ID, qrCode string) {
	// Bots started from already-registered credentials never need a QR;
	// a QR event here means the stored device identity was rejected.
	w.logger.WarnWithFields("unexpected QR code requested for a registered bot", logger.Fields{
		"bot_id": botID.String(),
	})
}

func (w *Worker) OnAuthenticated(botID bot.ID, jid string) {
	w.setStatus(bot.StatusOnline)
	if w.onEvent != nil {
		w.onEvent(w.botID, bot.StatusOnline, ReasonUnknown)
	}
}

func (w *Worker) OnAuthenticationFailed(botID bot.ID, reason string) {
	w.setStatus(bot.StatusError)
	if w.onEvent != nil {
		w.onEvent(w.botID, bot.StatusError, ReasonAuthFailed)
	}
}

func (w *Worker) OnMessage(botID bot.ID, message *whatsapp.Message) {
	w.logger.DebugWithFields("message event", logger.Fields{
		"bot_id":     botID.String(),
		"message_id": message.ID,
	})
}

func (w *Worker) OnError(botID bot.ID, err error) {
	w.setStatus(bot.StatusError)
	if w.onEvent != nil {
		w.onEvent(w.botID, bot.StatusError, ReasonUnknown)
	}
}

var _ whatsapp.EventHandler = (*Worker)(nil)

// savedCredentialsPath returns where a bot's raw credential blob lives.
func savedCredentialsPath(root *authstore.Root, tenant, botID string) string {
	return root.CredentialsPath(tenant, botID)
}

// readSavedJID recovers the last known WhatsApp JID for a bot from its
// materialized credential file, if present, to avoid re-registering a new
// device on restart.
func readSavedJID(root *authstore.Root, tenant, botID string) string {
	data, err := os.ReadFile(root.CredentialsPath(tenant, botID))
	if err != nil {
		return ""
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	if creds, ok := doc["creds"].(map[string]interface{}); ok {
		if me, ok := creds["me"].(map[string]interface{}); ok {
			if id, ok := me["id"].(string); ok {
				return id
			}
		}
	}
	return ""
}

var _ = time.Now
