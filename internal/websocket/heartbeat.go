package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type hbState int

const (
	hbAlive hbState = iota
	hbAwaitingPong
	hbDead
)

// heartbeat supervises one connection's liveness. Every interval it
// sends a ping and arms a bounded death timer; the matching pong stops
// the timer. The state and the armed timer are guarded by one mutex, so
// an ack only ever cancels the most recent probe, and a stray ack after
// death is a no-op. Each connection owns its heartbeat; one dying never
// touches another.
type heartbeat struct {
	conn     Conn
	interval time.Duration
	wait     time.Duration
	onDead   func()

	mu         sync.Mutex
	state      hbState
	deathTimer *time.Timer

	stop     chan struct{}
	stopOnce sync.Once
}

func newHeartbeat(conn Conn, interval, wait time.Duration, onDead func()) *heartbeat {
	return &heartbeat{
		conn:     conn,
		interval: interval,
		wait:     wait,
		onDead:   onDead,
		state:    hbAlive,
		stop:     make(chan struct{}),
	}
}

func (h *heartbeat) start() {
	go h.run()
}

func (h *heartbeat) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.probe()
		case <-h.stop:
			return
		}
	}
}

func (h *heartbeat) probe() {
	h.mu.Lock()
	if h.state == hbDead {
		h.mu.Unlock()
		return
	}
	if err := h.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.wait)); err != nil {
		h.mu.Unlock()
		h.expire()
		return
	}
	h.state = hbAwaitingPong
	if h.deathTimer != nil {
		h.deathTimer.Stop()
	}
	h.deathTimer = time.AfterFunc(h.wait, h.expire)
	h.mu.Unlock()
}

// ack records a liveness acknowledgment. Only valid while a probe is
// outstanding; otherwise ignored.
func (h *heartbeat) ack() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != hbAwaitingPong {
		return
	}
	h.deathTimer.Stop()
	h.deathTimer = nil
	h.state = hbAlive
}

// expire transitions to dead exactly once and reports upward.
func (h *heartbeat) expire() {
	h.mu.Lock()
	if h.state == hbDead {
		h.mu.Unlock()
		return
	}
	h.state = hbDead
	if h.deathTimer != nil {
		h.deathTimer.Stop()
		h.deathTimer = nil
	}
	h.mu.Unlock()

	h.halt()
	if h.onDead != nil {
		h.onDead()
	}
}

// shutdown stops probing without reporting death, for normal closes.
func (h *heartbeat) shutdown() {
	h.mu.Lock()
	h.state = hbDead
	if h.deathTimer != nil {
		h.deathTimer.Stop()
		h.deathTimer = nil
	}
	h.mu.Unlock()

	h.halt()
}

func (h *heartbeat) halt() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func (h *heartbeat) currentState() hbState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
