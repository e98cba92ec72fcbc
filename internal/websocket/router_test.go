package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*Router, *Registry, *fakeMessageStore, *fakeFileStore, *capturePublisher) {
	registry := NewRegistry()
	store := &fakeMessageStore{}
	files := newFakeFileStore()
	publisher := &capturePublisher{}
	return NewRouter(registry, store, files, publisher), registry, store, files, publisher
}

// drainPayload decodes the next frame queued on the client, failing if
// none is pending.
func drainPayload(t *testing.T, c *Client, v interface{}) {
	t.Helper()
	select {
	case data := <-c.send:
		require.NoError(t, json.Unmarshal(data, v))
	default:
		t.Fatal("no payload queued")
	}
}

func requireNoPayload(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected payload queued: %s", data)
	default:
	}
}

func TestRouterDeliversToRecipient(t *testing.T) {
	router, registry, store, _, publisher := newTestRouter()

	sender := newTestClient(1, "alice")
	recipient := newTestClient(2, "bob")
	registry.Register(sender)
	registry.Register(recipient)

	router.Handle(context.Background(), sender, []byte(`{"recipient":2,"text":"hi"}`))

	var got DeliveryPayload
	drainPayload(t, recipient, &got)
	assert.Equal(t, "hi", got.Text)
	assert.Equal(t, uint(1), got.Sender)
	assert.Equal(t, uint(2), got.Recipient)
	assert.Nil(t, got.File)
	assert.NotEmpty(t, got.MessageID)

	// Exactly one delivery, and the sender is not echoed.
	requireNoPayload(t, recipient)
	requireNoPayload(t, sender)

	msgs := store.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, uint(1), msgs[0].Sender)
	assert.Equal(t, uint(2), msgs[0].Recipient)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.False(t, msgs[0].CreatedAt.IsZero())
	assert.Equal(t, msgs[0].ID.Hex(), got.MessageID)

	require.Len(t, publisher.published(), 1)
}

func TestRouterSenderComesFromConnection(t *testing.T) {
	router, registry, store, _, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	registry.Register(sender)

	// A spoofed sender field in the payload is ignored.
	router.Handle(context.Background(), sender, []byte(`{"recipient":2,"text":"hi","sender":999}`))

	msgs := store.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, uint(1), msgs[0].Sender)
}

func TestRouterStoreAndForwardOfflineRecipient(t *testing.T) {
	router, registry, store, _, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	registry.Register(sender)

	router.Handle(context.Background(), sender, []byte(`{"recipient":2,"text":"are you there"}`))

	// Persisted and retrievable even though nothing was delivered.
	msgs, err := store.QueryBetween(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "are you there", msgs[0].Text)
}

func TestRouterDeliversToEveryRecipientDevice(t *testing.T) {
	router, registry, _, _, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	phone := newTestClient(2, "bob")
	laptop := newTestClient(2, "bob")
	registry.Register(sender)
	registry.Register(phone)
	registry.Register(laptop)

	router.Handle(context.Background(), sender, []byte(`{"recipient":2,"text":"hi"}`))

	for _, device := range []*Client{phone, laptop} {
		var got DeliveryPayload
		drainPayload(t, device, &got)
		assert.Equal(t, "hi", got.Text)
	}
}

func TestRouterDropsEmptyEvent(t *testing.T) {
	router, registry, store, _, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	recipient := newTestClient(2, "bob")
	registry.Register(sender)
	registry.Register(recipient)

	for _, raw := range []string{
		`{"recipient":2,"text":""}`,
		`{"recipient":2}`,
		`{"text":"no recipient"}`,
		`not json at all`,
	} {
		router.Handle(context.Background(), sender, []byte(raw))
	}

	assert.Empty(t, store.all())
	requireNoPayload(t, recipient)
}

func TestRouterPersistenceFailureKeepsConnectionQuiet(t *testing.T) {
	router, registry, store, _, publisher := newTestRouter()
	store.appendErr = assert.AnError

	sender := newTestClient(1, "alice")
	recipient := newTestClient(2, "bob")
	registry.Register(sender)
	registry.Register(recipient)

	router.Handle(context.Background(), sender, []byte(`{"recipient":2,"text":"hi"}`))

	requireNoPayload(t, recipient)
	assert.Empty(t, publisher.published())
	// The sender's connection stays usable.
	assert.False(t, sender.isClosed())
}

func attachmentEvent(name, contents string) []byte {
	data := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte(contents))
	raw, _ := json.Marshal(InboundEvent{
		Recipient: 2,
		File:      &FilePayload{Name: name, Data: data},
	})
	return raw
}

func TestRouterAttachmentStoredUnderDistinctRefs(t *testing.T) {
	router, registry, store, files, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	recipient := newTestClient(2, "bob")
	registry.Register(sender)
	registry.Register(recipient)

	// Two uploads with the same declared name must never collide.
	router.Handle(context.Background(), sender, attachmentEvent("holiday.png", "first"))
	router.Handle(context.Background(), sender, attachmentEvent("holiday.png", "second"))

	refs := files.refs()
	require.Len(t, refs, 2)
	assert.NotEqual(t, refs[0], refs[1])
	for _, ref := range refs {
		assert.True(t, strings.HasSuffix(ref, ".png"), "stored ref keeps the original extension: %s", ref)
	}

	msgs := store.all()
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.NotEmpty(t, m.File)
	}

	// Delivered events carry the original name and payload, not the ref.
	for _, want := range []string{"first", "second"} {
		var got DeliveryPayload
		drainPayload(t, recipient, &got)
		require.NotNil(t, got.File)
		assert.Equal(t, "holiday.png", got.File.Name)

		idx := strings.IndexByte(got.File.Data, ',')
		require.Positive(t, idx)
		decoded, err := base64.StdEncoding.DecodeString(got.File.Data[idx+1:])
		require.NoError(t, err)
		assert.Equal(t, want, string(decoded))
	}
}

func TestRouterAttachmentOnlyMessageIsValid(t *testing.T) {
	router, registry, store, files, _ := newTestRouter()

	sender := newTestClient(1, "alice")
	registry.Register(sender)

	router.Handle(context.Background(), sender, attachmentEvent("voice.ogg", "audio-bytes"))

	require.Len(t, store.all(), 1)
	assert.Empty(t, store.all()[0].Text)
	assert.Len(t, files.refs(), 1)
}
