// Package realtime pushes freshly stored notifications to users that hold an
// open websocket connection.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is the frame sent to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	userID  primitive.ObjectID
	payload []byte
}

// Hub tracks connections per user. All map mutations happen on the Run
// goroutine; the mutex only guards reads from other goroutines.
type Hub struct {
	clients map[primitive.ObjectID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	push       chan envelope
	done       chan struct{}
	stopOnce   sync.Once

	mutex sync.RWMutex
	log   logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mutex.Unlock()
			h.log.WithField("user_id", client.userID.Hex()).Debug("websocket client registered")

		case client := <-h.unregister:
			h.remove(client)

		case env := <-h.push:
			h.mutex.RLock()
			var stale []*Client
			for client := range h.clients[env.userID] {
				select {
				case client.send <- env.payload:
				default:
					stale = append(stale, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range stale {
				h.remove(client)
			}

		case <-h.done:
			h.mutex.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
			}
			h.clients = make(map[primitive.ObjectID]map[*Client]bool)
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.log.WithField("user_id", client.userID.Hex()).Debug("websocket client unregistered")
}

// SendToUser queues a message for every connection of userID. It never
// blocks on slow clients; a full hub queue drops the message.
func (h *Hub) SendToUser(userID primitive.ObjectID, msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.log.WithError(err).Error("marshaling websocket message")
		return
	}

	select {
	case h.push <- envelope{userID: userID, payload: payload}:
	case <-h.done:
	default:
		h.log.WithField("user_id", userID.Hex()).Warn("websocket push queue full, message dropped")
	}
}

// ConnectionsCount returns the number of open connections.
func (h *Hub) ConnectionsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
