package whats

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/whatsapp"
	"botfleet/pkg/logger"
)

// Client implements whatsapp.Client using the whatsmeow library, scoped to
// a single bot's device.
type Client struct {
	botID        bot.ID
	eventHandler whatsapp.EventHandler
	logger       logger.Logger

	container *sqlstore.Container
	device    *store.Device
	client    *whatsmeow.Client

	currentQRCode    string
	currentQRBase64  string
	qrMonitoringDone chan bool
	isMonitoring     bool
}

// deviceForBot retrieves the existing device for a bot's saved JID, or
// allocates a new one if none is saved yet.
func deviceForBot(ctx context.Context, container *sqlstore.Container, botID bot.ID, savedJID string, log logger.Logger) (*store.Device, error) {
	if savedJID == "" {
		return container.NewDevice(), nil
	}

	jid, ok := parseJID(savedJID)
	if !ok {
		log.WarnWithFields("invalid saved JID, allocating new device", logger.Fields{
			"bot_id": botID.String(),
		})
		return container.NewDevice(), nil
	}

	device, err := container.GetDevice(ctx, jid)
	if err != nil {
		log.WarnWithFields("could not recover existing device, allocating new one", logger.Fields{
			"bot_id": botID.String(),
			"error":  err.Error(),
		})
		return container.NewDevice(), nil
	}

	return device, nil
}

func parseJID(jidStr string) (types.JID, bool) {
	if jidStr == "" {
		return types.JID{}, false
	}
	jid, err := types.ParseJID(jidStr)
	if err != nil {
		return types.JID{}, false
	}
	return jid, true
}

// NewClient creates a whatsmeow-backed client for a single bot.
func NewClient(botID bot.ID, container *sqlstore.Container, savedJID string, proxyURL string, log logger.Logger) (whatsapp.Client, error) {
	ctx := context.Background()

	device, err := deviceForBot(ctx, container, botID, savedJID, log)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	waClient := whatsmeow.NewClient(device, nil)

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		waClient.SetProxy(http.ProxyURL(parsed))
	}

	c := &Client{
		botID:            botID,
		logger:           log,
		container:        container,
		device:           device,
		client:           waClient,
		qrMonitoringDone: make(chan bool, 1),
	}

	waClient.AddEventHandler(c.handleEvent)

	log.InfoWithFields("whatsapp client created", logger.Fields{
		"bot_id": botID.String(),
	})

	return c, nil
}

func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		if c.eventHandler != nil {
			jid := ""
			if c.client.Store.ID != nil {
				jid = c.client.Store.ID.String()
			}
			c.eventHandler.OnConnected(c.botID, jid)
		}

	case *events.Disconnected:
		if c.eventHandler != nil {
			c.eventHandler.OnDisconnected(c.botID, "connection lost")
		}

	case *events.LoggedOut:
		c.currentQRCode = ""
		c.currentQRBase64 = ""
		if c.eventHandler != nil {
			c.eventHandler.OnDisconnected(c.botID, fmt.Sprintf("logged out: %s", v.Reason.String()))
		}

	case *events.QR:
		if len(v.Codes) > 0 {
			c.handleQRCodeEvent(v.Codes[0])
			if c.eventHandler != nil {
				c.eventHandler.OnQRCode(c.botID, v.Codes[0])
			}
		}

	case *events.PairSuccess:
		c.currentQRCode = ""
		c.currentQRBase64 = ""
		if c.eventHandler != nil {
			c.eventHandler.OnAuthenticated(c.botID, v.ID.String())
		}

	case *events.StreamError:
		if c.eventHandler != nil {
			c.eventHandler.OnError(c.botID, fmt.Errorf("stream error: code=%s", v.Code))
		}

	case *events.ConnectFailure:
		if c.eventHandler != nil {
			c.eventHandler.OnError(c.botID, fmt.Errorf("connect failure: %s", v.Reason.String()))
		}

	case *events.Message:
		if c.eventHandler != nil {
			c.eventHandler.OnMessage(c.botID, toDomainMessage(v))
		}
	}
}

func toDomainMessage(e *events.Message) *whatsapp.Message {
	return &whatsapp.Message{
		ID:        e.Info.ID,
		From:      e.Info.Sender.String(),
		To:        e.Info.Chat.String(),
		Body:      e.Message.GetConversation(),
		Type:      whatsapp.MessageTypeText,
		Timestamp: e.Info.Timestamp,
		IsFromMe:  e.Info.IsFromMe,
	}
}

// Connect establishes the WhatsApp connection, beginning QR pairing if the
// device has no stored identity yet.
func (c *Client) Connect(ctx context.Context) (*whatsapp.ConnectionResult, error) {
	result := &whatsapp.ConnectionResult{Timestamp: time.Now()}

	if c.client.Store.ID == nil {
		qrChan, err := c.client.GetQRChannel(context.Background())
		if err != nil {
			if !errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
				return nil, fmt.Errorf("failed to get QR channel: %w", err)
			}
			result.Status = whatsapp.StatusAuthenticated
			result.JID = c.client.Store.ID.String()
			return result, nil
		}

		if err := c.client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go c.processQRChannel(qrChan)
		result.Status = whatsapp.StatusAuthenticating
		return result, nil
	}

	result.Status = whatsapp.StatusAuthenticated
	result.JID = c.client.Store.ID.String()

	if err := c.client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return result, nil
}

// Disconnect closes the WhatsApp connection without clearing credentials.
func (c *Client) Disconnect(ctx context.Context) error {
	c.client.Disconnect()
	return nil
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) GetConnectionStatus() whatsapp.ConnectionStatus {
	if !c.client.IsConnected() {
		return whatsapp.StatusDisconnected
	}
	if c.client.Store.ID == nil {
		return whatsapp.StatusAuthenticating
	}
	return whatsapp.StatusAuthenticated
}

// GenerateQR returns the most recently received QR code, base64-encoded.
func (c *Client) GenerateQR(ctx context.Context) (string, error) {
	if c.client.Store.ID != nil {
		return "", fmt.Errorf("already authenticated")
	}
	if c.currentQRBase64 != "" {
		return c.currentQRBase64, nil
	}
	if c.isMonitoring {
		return "", fmt.Errorf("QR code not yet available")
	}
	return "", fmt.Errorf("QR monitoring not active, connect first")
}

// PairPhone requests a pairing code for the given phone number.
func (c *Client) PairPhone(ctx context.Context, phoneNumber string) (string, error) {
	if c.client.Store.ID != nil {
		return "", fmt.Errorf("already authenticated")
	}

	code, err := c.client.PairPhone(ctx, phoneNumber, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return "", fmt.Errorf("failed to pair phone: %w", err)
	}

	c.logger.InfoWithFields("pairing code generated", logger.Fields{
		"bot_id": c.botID.String(),
		"code":   code,
	})

	return code, nil
}

func (c *Client) IsAuthenticated() bool {
	return c.client.Store.ID != nil
}

func (c *Client) GetSessionID() bot.ID {
	return c.botID
}

func (c *Client) GetJID() string {
	if c.client.Store.ID == nil {
		return ""
	}
	return c.client.Store.ID.String()
}

func (c *Client) GetDeviceInfo() *whatsapp.DeviceInfo {
	return &whatsapp.DeviceInfo{
		Platform:     "linux",
		AppVersion:   "2.2412.54",
		DeviceModel:  "Desktop",
		OSVersion:    "0.1",
		Manufacturer: "botfleet",
	}
}

func (c *Client) SendMessage(ctx context.Context, to, message string) error {
	if !c.IsAuthenticated() {
		return fmt.Errorf("not authenticated")
	}

	recipient, err := types.ParseJID(to)
	if err != nil {
		return fmt.Errorf("invalid recipient JID: %w", err)
	}

	if _, err := c.client.SendMessage(ctx, recipient, &waE2E.Message{Conversation: &message}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (c *Client) SendImage(ctx context.Context, to, imagePath, caption string) error {
	return fmt.Errorf("image sending not implemented")
}

func (c *Client) SendDocument(ctx context.Context, to, documentPath, filename string) error {
	return fmt.Errorf("document sending not implemented")
}

func (c *Client) SetEventHandler(handler whatsapp.EventHandler) {
	c.eventHandler = handler
}

func (c *Client) RemoveEventHandler() {
	c.eventHandler = nil
}

// Close disconnects and stops QR monitoring without deleting stored
// credentials.
func (c *Client) Close() error {
	c.stopQRMonitoring()
	c.client.Disconnect()
	return nil
}

func (c *Client) processQRChannel(qrChan <-chan whatsmeow.QRChannelItem) {
	c.isMonitoring = true
	connected := false

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			c.displayQRCodeInTerminal(evt.Code)
			c.handleQRCodeEvent(evt.Code)
		case "timeout":
			c.handleQRTimeoutEvent()
			c.isMonitoring = false
			return
		case "success":
			connected = true
			c.handleQRSuccessEvent()
			c.isMonitoring = false
			return
		}
	}

	c.isMonitoring = false
	if !connected {
		c.handleQRChannelClosedWithoutConnection()
	}
}

func (c *Client) handleQRCodeEvent(qrCode string) {
	c.currentQRCode = qrCode

	image, err := qrcode.Encode(qrCode, qrcode.Medium, 256)
	if err != nil {
		c.logger.ErrorWithError("failed to encode QR code", err, logger.Fields{
			"bot_id": c.botID.String(),
		})
		return
	}

	c.currentQRBase64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	if c.eventHandler != nil {
		c.eventHandler.OnQRCode(c.botID, qrCode)
	}
}

func (c *Client) handleQRTimeoutEvent() {
	c.currentQRCode = ""
	c.currentQRBase64 = ""
	if c.eventHandler != nil {
		c.eventHandler.OnError(c.botID, fmt.Errorf("QR code timeout"))
	}
}

func (c *Client) handleQRSuccessEvent() {
	c.currentQRCode = ""
	c.currentQRBase64 = ""

	jid := ""
	if c.client.Store.ID != nil {
		jid = c.client.Store.ID.String()
	}
	if c.eventHandler != nil && jid != "" {
		c.eventHandler.OnAuthenticated(c.botID, jid)
	}
}

func (c *Client) handleQRChannelClosedWithoutConnection() {
	c.currentQRCode = ""
	c.currentQRBase64 = ""
	if c.eventHandler != nil {
		c.eventHandler.OnDisconnected(c.botID, "QR channel closed without connection")
	}
}

func (c *Client) stopQRMonitoring() {
	if !c.isMonitoring {
		return
	}
	select {
	case c.qrMonitoringDone <- true:
	default:
	}
}

func (c *Client) displayQRCodeInTerminal(qrCode string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("pairing QR for bot %s\n", c.botID.String())
	fmt.Println(strings.Repeat("=", 60))
	qrterminal.GenerateHalfBlock(qrCode, qrterminal.L, os.Stdout)
	fmt.Println(strings.Repeat("=", 60) + "\n")
}
