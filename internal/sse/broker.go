package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/scanlink/scanlink-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	OwnerID string
	Events  chan Event
	Done    chan struct{}
}

// ownerFeed tracks the Redis pub/sub goroutine serving one owner. The feed is
// cancelled when the owner's last client unsubscribes; done is closed when the
// goroutine has actually returned.
type ownerFeed struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Broker fans scan events out to connected dashboard clients. Events travel
// through Redis pub/sub so every server process sees scans accounted by its
// peers. One pub/sub subscription exists per owner with at least one client.
type Broker struct {
	redis   *redisclient.Client
	clients map[string]map[*Client]bool // ownerID -> set of clients
	feeds   map[string]*ownerFeed       // ownerID -> pub/sub goroutine handle
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:   redisClient,
		clients: make(map[string]map[*Client]bool),
		feeds:   make(map[string]*ownerFeed),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *Broker) Subscribe(ownerID string) *Client {
	client := &Client{
		OwnerID: ownerID,
		Events:  make(chan Event, 100),
		Done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.clients[ownerID] == nil {
		b.clients[ownerID] = make(map[*Client]bool)

		feedCtx, feedCancel := context.WithCancel(b.ctx)
		feed := &ownerFeed{cancel: feedCancel, done: make(chan struct{})}
		b.feeds[ownerID] = feed
		go b.subscribeToRedis(feedCtx, ownerID, feed.done)
	}
	b.clients[ownerID][client] = true
	clientCount := len(b.clients[ownerID])
	b.mu.Unlock()

	log.Info().
		Str("ownerId", ownerID).
		Int("clientCount", clientCount).
		Msg("scan feed client subscribed")

	return client
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, ok := b.clients[client.OwnerID]; ok {
		delete(clients, client)
		close(client.Done)

		if len(clients) == 0 {
			delete(b.clients, client.OwnerID)
			if feed, ok := b.feeds[client.OwnerID]; ok {
				feed.cancel()
				delete(b.feeds, client.OwnerID)
			}
		}

		log.Info().
			Str("ownerId", client.OwnerID).
			Int("clientCount", len(clients)).
			Msg("scan feed client unsubscribed")
	}
}

func (b *Broker) Publish(ctx context.Context, ownerID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := redisclient.ScanChannel(ownerID)
	return b.redis.Publish(ctx, channel, data).Err()
}

func (b *Broker) subscribeToRedis(ctx context.Context, ownerID string, done chan struct{}) {
	defer close(done)

	channel := redisclient.ScanChannel(ownerID)
	pubsub := b.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("ownerId", ownerID).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal scan event")
				continue
			}

			b.broadcast(ownerID, event)
		}
	}
}

func (b *Broker) broadcast(ownerID string, event Event) {
	b.mu.RLock()
	clients := b.clients[ownerID]
	b.mu.RUnlock()

	for client := range clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("ownerId", ownerID).
				Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, clients := range b.clients {
		for client := range clients {
			close(client.Done)
		}
	}
	b.clients = make(map[string]map[*Client]bool)
	b.feeds = make(map[string]*ownerFeed)
}

func (b *Broker) ClientCount(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[ownerID])
}
