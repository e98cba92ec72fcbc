package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	"dm-service/internal/events"
	"dm-service/internal/message"
	"dm-service/internal/storage"

	"github.com/google/uuid"
)

// Router validates an inbound message event, persists it and delivers it
// to the recipient's live connections. Store-and-forward: an offline
// recipient still gets a durable record, retrievable by history query.
type Router struct {
	registry *Registry
	messages message.Store
	files    storage.Store
	events   events.Publisher
}

func NewRouter(registry *Registry, messages message.Store, files storage.Store, publisher events.Publisher) *Router {
	return &Router{
		registry: registry,
		messages: messages,
		files:    files,
		events:   publisher,
	}
}

// Handle processes one raw inbound frame from an authenticated sender.
// Invalid events are dropped with a warning; the outbound schema carries
// no error frames. Persistence failures are logged and never kill the
// connection.
func (r *Router) Handle(ctx context.Context, sender *Client, raw []byte) {
	var evt InboundEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		slog.Warn("dropping malformed event", "clientID", sender.id, "userID", sender.userID, "error", err)
		return
	}

	hasFile := evt.File != nil && evt.File.Data != ""
	if evt.Recipient == 0 || (evt.Text == "" && !hasFile) {
		slog.Warn("dropping empty event", "clientID", sender.id, "userID", sender.userID, "recipient", evt.Recipient)
		return
	}

	var storedRef string
	if hasFile {
		ref, err := r.saveAttachment(ctx, evt.File)
		if err != nil {
			slog.Error("failed to store attachment", "clientID", sender.id, "userID", sender.userID, "error", err)
			return
		}
		storedRef = ref
	}

	msg, err := r.messages.Append(ctx, sender.userID, evt.Recipient, evt.Text, storedRef)
	if err != nil {
		slog.Error("failed to persist message", "clientID", sender.id, "userID", sender.userID, "error", err)
		return
	}

	if err := r.events.MessageCreated(ctx, msg); err != nil {
		slog.Error("failed to publish message event", "messageID", msg.ID.Hex(), "error", err)
	}

	r.deliver(sender, &evt, msg)
}

// saveAttachment decodes the data-URI payload and persists it under a
// collision-free name that keeps the original extension.
func (r *Router) saveAttachment(ctx context.Context, file *FilePayload) (string, error) {
	payload := file.Data
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(file.Name)
	return r.files.Save(ctx, name, data)
}

// deliver pushes the persisted message to every live connection of the
// recipient. The sender is not echoed. No live connection is not an
// error; the record already exists.
func (r *Router) deliver(sender *Client, evt *InboundEvent, msg *message.Message) {
	payload := DeliveryPayload{
		Text:      msg.Text,
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		MessageID: msg.ID.Hex(),
	}
	if evt.File != nil && evt.File.Data != "" {
		payload.File = &FilePayload{Name: evt.File.Name, Data: evt.File.Data}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal delivery payload", "messageID", msg.ID.Hex(), "error", err)
		return
	}

	for _, c := range r.registry.ConnectionsFor(msg.Recipient) {
		if err := c.Enqueue(data); err != nil {
			slog.Debug("recipient connection dropped during delivery", "clientID", c.id, "messageID", msg.ID.Hex())
		}
	}
}
