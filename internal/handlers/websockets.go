package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	sendBuffer = 32

	wsConnectedMessage = "Connected"
)

var errSubscriberFull = errors.New("subscriber send buffer full")

var upgrader = websocket.Upgrader{
	// origins are checked by the CORS layer in front of the router
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber queues hub messages for one connection. Send never blocks: a
// client that stops reading loses messages instead of stalling the hub.
type wsSubscriber struct {
	id     string
	out    chan []byte
	mu     sync.Mutex
	closed bool
}

func newWSSubscriber() *wsSubscriber {
	return &wsSubscriber{id: uuid.NewString(), out: make(chan []byte, sendBuffer)}
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("subscriber closed")
	}
	select {
	case s.out <- payload:
		return nil
	default:
		return errSubscriberFull
	}
}

func (s *wsSubscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// @Summary      Live updates
// @Description  Websocket. The first frame is statusUpdate, followed by the current tempUpdate when one exists, then every broadcast.
// @Tags         system
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	sub := newWSSubscriber()
	if h.hub != nil {
		h.hub.Register(sub)
		defer h.hub.Unregister(sub.ID())
	}
	defer sub.close()

	done := make(chan struct{})
	go h.startReader(conn, done)

	if err := h.sendInitial(conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case payload := <-sub.out:
			if err := writeFrame(conn, payload); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "subscriber", sub.ID(), "err", err)
				}
				return
			}
		}
	}
}

// sendInitial greets the client and hands it the current snapshot.
func (h *Handler) sendInitial(conn *websocket.Conn) error {
	hello, err := broadcast.Encode(models.MessageStatusUpdate, models.StatusUpdate{Message: wsConnectedMessage})
	if err != nil {
		return err
	}
	if err := writeFrame(conn, hello); err != nil {
		return err
	}

	snap := h.services.Snapshot()
	if !snap.Populated() {
		return nil
	}
	current, err := broadcast.Encode(models.MessageTempUpdate, models.TempUpdate{TempData: snap.Records})
	if err != nil {
		return err
	}
	return writeFrame(conn, current)
}

func writeFrame(conn *websocket.Conn, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// startReader drains incoming messages to handle control frames and detect closure.
// Clients have nothing to say; anything they send is ignored.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}
