package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// mockConn is a recording stand-in for a live websocket connection.
type mockConn struct {
	mu          sync.Mutex
	frames      [][]byte
	pings       int
	closed      bool
	pingErr     error
	onPing      func()
	pongHandler func(string) error

	readCh chan []byte
	done   chan struct{}
	once   sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		readCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-m.readCh:
		return websocket.TextMessage, data, nil
	case <-m.done:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return websocket.ErrCloseSent
	}
	if messageType == websocket.TextMessage {
		buf := make([]byte, len(data))
		copy(buf, data)
		m.frames = append(m.frames, buf)
	}
	return nil
}

func (m *mockConn) WriteControl(messageType int, _ []byte, _ time.Time) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return websocket.ErrCloseSent
	}
	if m.pingErr != nil {
		err := m.pingErr
		m.mu.Unlock()
		return err
	}
	var cb func()
	if messageType == websocket.PingMessage {
		m.pings++
		cb = m.onPing
	}
	m.mu.Unlock()

	// Acks arrive on their own goroutine, the way a pong does on a real
	// connection's read loop.
	if cb != nil {
		go cb()
	}
	return nil
}

func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConn) SetReadLimit(int64)               {}

func (m *mockConn) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pongHandler = h
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) pingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pings
}

func (m *mockConn) writtenFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames))
	copy(out, m.frames)
	return out
}

// deliver queues a frame for ReadMessage.
func (m *mockConn) deliver(data []byte) {
	m.readCh <- data
}
