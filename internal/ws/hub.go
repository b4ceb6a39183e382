package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
)

var (
	// ErrHubStopped возвращается при рассылке после остановки хаба.
	ErrHubStopped = errors.New("ws: хаб остановлен")
	// ErrBacklogFull возвращается, когда очередь рассылки переполнена.
	ErrBacklogFull = errors.New("ws: очередь рассылки переполнена")
)

// Event: сообщение для панели администратора.
type Event struct {
	Type   string    `json:"type"`
	Data   any       `json:"data"`
	SentAt time.Time `json:"sent_at"`
}

// Hub рассылает события всем подключённым администраторам.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	now        func() time.Time
}

// NewHub создаёт новый хаб. Рассылка начинается после вызова Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	log := logger.Component("ws")
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Info("хаб остановлен")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			log.WithField("admin_id", client.adminID).Debug("клиент подключен")
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.send(payload)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register добавляет клиента. Возвращает ErrHubStopped, если хаб уже не работает.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast ставит событие в очередь рассылки всем клиентам.
func (h *Hub) Broadcast(event string, data any) error {
	raw, err := json.Marshal(Event{Type: event, Data: data, SentAt: h.now().UTC()})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- raw:
		return nil
	case <-h.done:
		return ErrHubStopped
	default:
		return ErrBacklogFull
	}
}

// Len возвращает число подключённых клиентов.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AdminConnected сообщает, есть ли открытое подключение администратора.
func (h *Hub) AdminConnected(adminID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.adminID == adminID {
			return true
		}
	}
	return false
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// send вызывается только из цикла Run, поэтому закрытие send не гоняется с записью.
func (h *Hub) send(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// медленный клиент: writePump увидит закрытый канал и закроет соединение
			delete(h.clients, client)
			close(client.send)
			logger.Component("ws").WithField("admin_id", client.adminID).Warn("клиент отключен: буфер переполнен")
		}
	}
}
