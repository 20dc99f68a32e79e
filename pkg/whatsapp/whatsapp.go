package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

var ErrMissingStore = errors.New("whatsapp session store dsn is not configured")

type InboundMessage struct {
	UserID     string
	SenderName string
	Text       string
}

// MessageHandler turns one inbound message into the text to send back.
type MessageHandler func(ctx context.Context, msg InboundMessage) (string, error)

type IWhatsapp interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
	OnMessage(handler MessageHandler)
	Disconnect() error
	IsConnected() bool
}

type Config struct {
	StoreDSN       string
	ConnectTimeout time.Duration
	ReplyTimeout   time.Duration
}

type whatsappClient struct {
	client       *whatsmeow.Client
	log          *logrus.Logger
	replyTimeout time.Duration

	mu      sync.RWMutex
	handler MessageHandler
}

func New(ctx context.Context, cfg Config, log *logrus.Logger) (IWhatsapp, error) {
	if strings.TrimSpace(cfg.StoreDSN) == "" {
		return nil, ErrMissingStore
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 60 * time.Second
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 90 * time.Second
	}

	container, err := sqlstore.New(ctx, "postgres", cfg.StoreDSN, newLogger(log, "Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	w := &whatsappClient{
		client:       whatsmeow.NewClient(deviceStore, newLogger(log, "Client")),
		log:          log,
		replyTimeout: cfg.ReplyTimeout,
	}

	connected := make(chan struct{}, 1)
	w.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Connected:
			select {
			case connected <- struct{}{}:
			default:
			}
		case *events.Message:
			go w.handleMessage(v)
		}
	})

	if w.client.Store.ID == nil {
		qrChan, _ := w.client.GetQRChannel(context.Background())
		if err := w.client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					log.WithField("qr_code", evt.Code).Info("[whatsapp.New] scan QR code to pair")
				}
			}
		}()
	} else {
		if err := w.client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	select {
	case <-connected:
		log.Info("WhatsApp connected")
	case <-time.After(cfg.ConnectTimeout):
		w.client.Disconnect()
		return nil, fmt.Errorf("connection timeout")
	}

	return w, nil
}

func (w *whatsappClient) OnMessage(handler MessageHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = handler
}

func (w *whatsappClient) handleMessage(evt *events.Message) {
	if evt.Info.IsFromMe || evt.Info.IsGroup {
		return
	}

	text := MessageText(evt.Message)
	if text == "" {
		return
	}

	w.mu.RLock()
	handler := w.handler
	w.mu.RUnlock()
	if handler == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.replyTimeout)
	defer cancel()

	sender := evt.Info.Sender.ToNonAD()
	reply, err := handler(ctx, InboundMessage{
		UserID:     sender.User,
		SenderName: evt.Info.PushName,
		Text:       text,
	})
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"user_id": sender.User,
			"error":   err.Error(),
		}).Error("[whatsapp.handleMessage] handler failed")
		return
	}
	if reply == "" {
		return
	}

	if _, err := w.client.SendMessage(ctx, evt.Info.Chat, textMessage(reply)); err != nil {
		w.log.WithFields(logrus.Fields{
			"user_id": sender.User,
			"error":   err.Error(),
		}).Error("[whatsapp.handleMessage] failed to send reply")
	}
}

func (w *whatsappClient) SendMessage(ctx context.Context, phoneNumber, message string) error {
	jid := types.NewJID(phoneNumber, types.DefaultUserServer)

	if _, err := w.client.SendMessage(ctx, jid, textMessage(message)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (w *whatsappClient) Disconnect() error {
	w.client.Disconnect()
	return nil
}

func (w *whatsappClient) IsConnected() bool {
	return w.client.IsConnected()
}

// MessageText returns the plain text of a chat message, if any.
func MessageText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(msg.GetExtendedTextMessage().GetText())
}

func textMessage(text string) *waE2E.Message {
	return &waE2E.Message{
		Conversation: proto.String(text),
	}
}
