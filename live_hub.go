package livetiming

import (
	"net/http"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
)

type LiveEvent string

const (
	LiveEventDrivers        LiveEvent = "drivers"
	LiveEventSessionStarted LiveEvent = "session_started"
)

type Broadcaster interface {
	Send(event LiveEvent, message interface{}) error
}

type NilBroadcaster struct{}

func (NilBroadcaster) Send(event LiveEvent, message interface{}) error {
	logrus.WithField("message", message).Debugf("Message send %s", event)
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type liveMessage struct {
	EventType LiveEvent   `json:"EventType"`
	Message   interface{} `json:"Message"`
}

// LiveHub fans driver updates out to every connected websocket client.
type LiveHub struct {
	clients    map[*liveClient]bool
	broadcast  chan liveMessage
	register   chan *liveClient
	unregister chan *liveClient
}

func NewLiveHub() *LiveHub {
	return &LiveHub{
		broadcast:  make(chan liveMessage, 1000),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		clients:    make(map[*liveClient]bool),
	}
}

// Send queues message for every client. If the queue is full the message is dropped.
func (h *LiveHub) Send(event LiveEvent, message interface{}) error {
	select {
	case h.broadcast <- liveMessage{EventType: event, Message: message}:
	default:
		logrus.Warnf("Live hub queue is full, dropping %s message", event)
	}

	return nil
}

func (h *LiveHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				close(client.receive)
				delete(h.clients, client)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.receive <- message:
				default:
					close(client.receive)
					delete(h.clients, client)
				}
			}
		}
	}
}

// liveConn is the part of *websocket.Conn a live client uses.
type liveConn interface {
	ReadMessage() (int, []byte, error)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type liveClient struct {
	hub *LiveHub

	conn    liveConn
	receive chan liveMessage
}

// readPump discards anything the browser sends and unregisters the client once
// the connection goes away.
func (c *liveClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(time.Second * 10)
	defer func() {
		if rvr := recover(); rvr != nil {
			logrus.WithField("panic", rvr).Errorf("Recovered from panic")
		}
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.receive:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				// a browser that went away shows up as a broken pipe
				if !errors.Is(err, syscall.EPIPE) {
					logrus.WithError(err).Errorf("Could not send websocket message")
				}

				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebsocket upgrades the request and sends the client the given initial
// message before any broadcast.
func (h *LiveHub) ServeWebsocket(w http.ResponseWriter, r *http.Request, initial liveMessage) {
	c, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		logrus.WithError(err).Error("Could not upgrade websocket connection")
		return
	}

	client := &liveClient{hub: h, conn: c, receive: make(chan liveMessage, 256)}

	// queue the initial state before the hub can deliver broadcasts
	client.receive <- initial
	h.register <- client

	go client.writePump()
	go client.readPump()
}
