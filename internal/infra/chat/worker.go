package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"order_bot/internal/domain"
	"order_bot/internal/event"
	"order_bot/internal/infra"
	"order_bot/internal/infra/storage"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	maxRetries       = 10
)

// envelope is one socket-mode frame from the chat platform. MessageID
// doubles as the order id: an order lives on the message it was posted
// as. Metadata carries the last-applied snapshot when the platform has
// one attached to the message.
type envelope struct {
	Type      string           `json:"type"` // "command", "hello", "ping"
	Op        string           `json:"op"`
	ChannelID string           `json:"channel_id"`
	MessageID string           `json:"message_id"`
	UserID    string           `json:"user_id"`
	Metadata  *domain.Snapshot `json:"metadata,omitempty"`
	Payload   payload          `json:"payload"`
}

type payload struct {
	OrderName  string `json:"order_name"`
	OrderInfo  string `json:"order_info"`
	OrderImg   string `json:"order_img"`
	OrderState string `json:"order_state"`
	NewCreator string `json:"new_creator"`

	ItemName      string   `json:"item_name"`
	Price         string   `json:"price"`
	Quantity      string   `json:"quantity"`
	PlatformUsers []string `json:"platform_users"`
	// Freeform names arrive as one comma-separated field, the way the
	// item form collects them.
	FreeformUsers string `json:"freeform_users"`
}

// Worker maintains the socket-mode connection to the chat platform and
// forwards decoded commands to the dispatcher inbox. Events that name
// an order without carrying its snapshot get it attached from the
// local store, so the core can always rehydrate.
type Worker struct {
	wsURL     string
	token     string
	inbox     chan<- *event.Command
	snapshots *storage.Store

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a gateway worker.
func NewWorker(wsURL, token string, inbox chan<- *event.Command, snapshots *storage.Store) *Worker {
	return &Worker{
		wsURL:     wsURL,
		token:     token,
		inbox:     inbox,
		snapshots: snapshots,
	}
}

// Connect starts the connection loop.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Gateway connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := make(http.Header)
	header.Add("Authorization", "Bearer "+w.token)

	conn, _, err := dialer.DialContext(ctx, w.wsURL, header)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	infra.GlobalMetrics.SetGatewayConnected(true)

	if err := w.hello(); err != nil {
		w.closeConnection()
		return err
	}

	slog.Info("Gateway connected", slog.String("url", w.wsURL))
	return nil
}

func (w *Worker) hello() error {
	msg := map[string]string{"type": "hello"}
	b, _ := json.Marshal(msg)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var env envelope
	if json.Unmarshal(msg, &env) != nil || env.Type != "command" {
		return
	}

	cmd := event.AcquireCommand()
	cmd.Op = event.Op(env.Op)
	cmd.OrderID = domain.OrderID(env.MessageID)
	cmd.ChannelID = env.ChannelID
	cmd.Actor = env.UserID
	cmd.Snapshot = env.Metadata

	cmd.OrderName = env.Payload.OrderName
	cmd.OrderInfo = env.Payload.OrderInfo
	cmd.OrderImg = env.Payload.OrderImg
	cmd.OrderState = domain.OrderState(env.Payload.OrderState)
	cmd.NewCreator = env.Payload.NewCreator
	cmd.ItemName = env.Payload.ItemName
	cmd.Price = env.Payload.Price
	cmd.Quantity = env.Payload.Quantity
	cmd.PlatformUsers = append(cmd.PlatformUsers, env.Payload.PlatformUsers...)
	cmd.FreeformUsers = splitFreeform(env.Payload.FreeformUsers)

	// Frames that reference an existing order without a snapshot get
	// the last persisted one attached, so a fresh process can hydrate.
	if cmd.Snapshot == nil && cmd.Op != event.OpOpenOrder && w.snapshots != nil {
		snap, err := w.snapshots.GetSnapshot(cmd.OrderID)
		if err != nil {
			slog.Error("Snapshot lookup failed", slog.String("order", env.MessageID), slog.Any("error", err))
		}
		cmd.Snapshot = snap
	}

	select {
	case w.inbox <- cmd:
	default:
		// Inbox full: shed the command rather than stall the socket.
		slog.Warn("Inbox full, dropping command", slog.String("op", env.Op))
		event.ReleaseCommand(cmd)
	}
}

func splitFreeform(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
	infra.GlobalMetrics.SetGatewayConnected(false)
}

// Disconnect stops the worker and closes the connection.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
