package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
)

const outboundBuffer = 64

// Hub управляет всеми WebSocket клиентами и доставляет им события.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan message
	done       chan struct{}
}

// message адресовано одному пользователю или, при broadcast, всем подключённым.
type message struct {
	userID    uuid.UUID
	broadcast bool
	payload   []byte
}

// envelope описывает сообщение клиенту: в "type" имя события, в "data" полезная нагрузка.
type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var _ repository.EventPublisher = (*Hub)(nil)

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan message, outboundBuffer),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до отмены ctx; при выходе все клиенты отключаются.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.outbound:
			h.deliver(msg)
		}
	}
}

// Register добавляет клиента. После остановки хаба вызов ничего не делает.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish отправляет событие всем подключениям пользователя.
func (h *Hub) Publish(userID uuid.UUID, event string, payload interface{}) {
	h.enqueue(message{userID: userID}, event, payload)
}

// Broadcast отправляет событие всем подключённым пользователям.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.enqueue(message{broadcast: true}, event, payload)
}

// Connections возвращает число активных подключений пользователя.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// reply кладёт ответ в очередь одного клиента, если он ещё зарегистрирован.
func (h *Hub) reply(client *Client, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID][client]; !ok {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}

// enqueue не блокирует вызывающего: при переполненной очереди событие отбрасывается.
func (h *Hub) enqueue(msg message, event string, payload interface{}) {
	raw, err := json.Marshal(envelope{Type: event, Data: payload})
	if err != nil {
		logger.Log.WithError(err).WithField("event", event).Error("ws: не удалось сериализовать сообщение")
		return
	}
	msg.payload = raw

	select {
	case h.outbound <- msg:
	case <-h.done:
	default:
		logger.Log.WithField("event", event).Warn("ws: очередь событий переполнена, событие отброшено")
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
}

// dropLocked удаляет клиента и закрывает его очередь; повторный вызов безопасен.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) deliver(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	if msg.broadcast {
		for _, clients := range h.clients {
			for c := range clients {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.clients[msg.userID] {
			targets = append(targets, c)
		}
	}

	for _, c := range targets {
		select {
		case c.send <- msg.payload:
		default:
			// медленный клиент: закрытая очередь завершит его writePump
			h.dropLocked(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for c := range clients {
			h.dropLocked(c)
		}
	}
}
