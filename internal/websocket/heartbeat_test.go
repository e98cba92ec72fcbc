package websocket

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPingInterval = 20 * time.Millisecond
	testPongWait     = 10 * time.Millisecond
)

func TestHeartbeatPromptAckStaysAlive(t *testing.T) {
	conn := newMockConn()
	var deaths int32

	hb := newHeartbeat(conn, testPingInterval, testPongWait, func() {
		atomic.AddInt32(&deaths, 1)
	})
	// Acknowledge every probe immediately.
	conn.onPing = hb.ack

	hb.start()
	defer hb.shutdown()

	// Survives many probe cycles.
	time.Sleep(10 * testPingInterval)

	assert.Equal(t, int32(0), atomic.LoadInt32(&deaths))
	assert.NotEqual(t, hbDead, hb.currentState())
	assert.GreaterOrEqual(t, conn.pingCount(), 5)
}

func TestHeartbeatTimeoutDeclaresDead(t *testing.T) {
	conn := newMockConn()
	dead := make(chan struct{})

	hb := newHeartbeat(conn, testPingInterval, testPongWait, func() {
		close(dead)
	})
	hb.start()

	select {
	case <-dead:
	case <-time.After(10 * (testPingInterval + testPongWait)):
		t.Fatal("connection was never declared dead")
	}
	assert.Equal(t, hbDead, hb.currentState())

	// Probing has stopped for good.
	count := conn.pingCount()
	time.Sleep(3 * testPingInterval)
	assert.Equal(t, count, conn.pingCount())
}

func TestHeartbeatLateAckIsNoop(t *testing.T) {
	conn := newMockConn()
	var deaths int32

	hb := newHeartbeat(conn, testPingInterval, testPongWait, func() {
		atomic.AddInt32(&deaths, 1)
	})
	hb.start()

	require.Eventually(t, func() bool {
		return hb.currentState() == hbDead
	}, 10*(testPingInterval+testPongWait), time.Millisecond)

	// A straggler pong after death must change nothing.
	hb.ack()
	assert.Equal(t, hbDead, hb.currentState())
	assert.Equal(t, int32(1), atomic.LoadInt32(&deaths))
}

func TestHeartbeatAckWithoutProbeIsNoop(t *testing.T) {
	conn := newMockConn()
	hb := newHeartbeat(conn, time.Hour, time.Hour, nil)

	// No probe outstanding: the ack may not arm or disarm anything.
	hb.ack()
	assert.Equal(t, hbAlive, hb.currentState())
}

func TestHeartbeatProbeWriteFailureIsDeath(t *testing.T) {
	conn := newMockConn()
	conn.pingErr = assert.AnError
	dead := make(chan struct{})

	hb := newHeartbeat(conn, testPingInterval, testPongWait, func() {
		close(dead)
	})
	hb.start()

	select {
	case <-dead:
	case <-time.After(10 * testPingInterval):
		t.Fatal("unwritable connection was never declared dead")
	}
}

func TestHeartbeatShutdownIdempotent(t *testing.T) {
	conn := newMockConn()
	var deaths int32

	hb := newHeartbeat(conn, testPingInterval, testPongWait, func() {
		atomic.AddInt32(&deaths, 1)
	})
	hb.start()

	hb.shutdown()
	hb.shutdown()

	time.Sleep(3 * testPingInterval)
	// A normal shutdown never reports death.
	assert.Equal(t, int32(0), atomic.LoadInt32(&deaths))
}

func TestHeartbeatsAreIndependent(t *testing.T) {
	healthyConn := newMockConn()
	var healthyDead, sickDead int32

	healthy := newHeartbeat(healthyConn, testPingInterval, testPongWait, func() {
		atomic.AddInt32(&healthyDead, 1)
	})
	healthyConn.onPing = healthy.ack

	sick := newHeartbeat(newMockConn(), testPingInterval, testPongWait, func() {
		atomic.AddInt32(&sickDead, 1)
	})

	healthy.start()
	defer healthy.shutdown()
	sick.start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&sickDead) == 1
	}, 10*(testPingInterval+testPongWait), time.Millisecond)

	time.Sleep(3 * testPingInterval)
	assert.Equal(t, int32(0), atomic.LoadInt32(&healthyDead))
	assert.NotEqual(t, hbDead, healthy.currentState())
}
