package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"dm-service/internal/presence"
)

const enqueueTimeout = 5 * time.Second

// Hub owns the connection registry for the lifetime of the server
// process. Register/unregister requests funnel through its run loop;
// every accepted change triggers a full-state presence broadcast.
type Hub struct {
	registry *Registry
	router   *Router
	tracker  presence.Tracker

	pingInterval time.Duration
	pongWait     time.Duration

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(router *Router, tracker presence.Tracker, pingInterval, pongWait time.Duration) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		registry:     router.registry,
		router:       router,
		tracker:      tracker,
		pingInterval: pingInterval,
		pongWait:     pongWait,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		ctx:          ctx,
		cancel:       cancel,
	}
	return hub
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			slog.Info("websocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// Add asks the run loop to register the client.
func (h *Hub) Add(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	case <-time.After(enqueueTimeout):
		slog.Error("timeout sending registration request", "clientID", c.id, "userID", c.userID)
	}
}

// Remove asks the run loop to unregister the client. No-op if absent.
func (h *Hub) Remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	case <-time.After(enqueueTimeout):
		slog.Error("timeout sending unregister request", "clientID", c.id, "userID", c.userID)
	}
}

func (h *Hub) registerClient(c *Client) {
	h.registry.Register(c)
	slog.Info("client registered", "clientID", c.id, "userID", c.userID, "username", c.username)

	if err := h.tracker.SetOnline(h.ctx, c.userID); err != nil {
		slog.Error("failed to mirror user online", "userID", c.userID, "error", err)
	}

	h.broadcastPresence()
}

func (h *Hub) unregisterClient(c *Client) {
	if !h.registry.Unregister(c) {
		return
	}
	slog.Info("client unregistered", "clientID", c.id, "userID", c.userID)

	// Offline only once the last device is gone.
	if len(h.registry.ConnectionsFor(c.userID)) == 0 {
		if err := h.tracker.SetOffline(h.ctx, c.userID); err != nil {
			slog.Error("failed to mirror user offline", "userID", c.userID, "error", err)
		}
	}

	h.broadcastPresence()
}

// broadcastPresence pushes the current online set to every registered
// connection. Full state, no diffing; a connection failing mid-broadcast
// is skipped without aborting delivery to the rest.
func (h *Hub) broadcastPresence() {
	payload := PresencePayload{Online: h.registry.Snapshot()}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal presence payload", "error", err)
		return
	}

	for _, c := range h.registry.All() {
		if err := c.Enqueue(data); err != nil {
			slog.Debug("skipping dead connection during presence broadcast", "clientID", c.id, "userID", c.userID)
		}
	}
}
