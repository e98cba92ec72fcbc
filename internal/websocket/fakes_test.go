package websocket

import (
	"context"
	"sync"
	"time"

	"dm-service/internal/message"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMessageStore struct {
	mu        sync.Mutex
	msgs      []message.Message
	appendErr error
}

func (s *fakeMessageStore) Append(_ context.Context, sender, recipient uint, text, file string) (*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return nil, s.appendErr
	}
	msg := message.Message{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		File:      file,
		CreatedAt: time.Now().UTC(),
	}
	s.msgs = append(s.msgs, msg)
	return &msg, nil
}

func (s *fakeMessageStore) QueryBetween(_ context.Context, a, b uint) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []message.Message
	for _, m := range s.msgs {
		if (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) all() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]message.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

type fakeFileStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: make(map[string][]byte)}
}

func (s *fakeFileStore) Save(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = data
	return name, nil
}

func (s *fakeFileStore) refs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.saved))
	for name := range s.saved {
		out = append(out, name)
	}
	return out
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*message.Message
}

func (p *capturePublisher) MessageCreated(_ context.Context, msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*message.Message, len(p.events))
	copy(out, p.events)
	return out
}
