package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/store"
	"github.com/puctzero/puctzero/wire"
)

// newTestServer starts a real httptest websocket listener in front of a
// running Coordinator, the same accept path cmd/coordinator wires up.
func newTestServer(t *testing.T, conf store.Config) (*Coordinator, string) {
	t.Helper()

	c := New(t.TempDir()+"/config.json", conf)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		c.Accept(wire.NewConn(ws))
	}))
	t.Cleanup(srv.Close)

	addr := "ws" + strings.TrimPrefix(srv.URL, "http")
	return c, addr
}

func dial(t *testing.T, addr string) *wire.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(addr, nil)
	require.NoError(t, err)
	return wire.NewConn(ws)
}

func testStoreConfig(t *testing.T) store.Config {
	conf := store.Default("binary-tree", t.TempDir(), 4000)
	conf.GenerationSize = 4
	return conf
}

// handshakeAsSelfPlay drives the coordinator's Ping/Hello opening exchange
// and returns once the worker has been asked for a self-play query.
func handshakeAsSelfPlay(t *testing.T, conn *wire.Conn) *wire.SelfPlayQuery {
	t.Helper()

	msg, err := conn.Receive()
	require.NoError(t, err)
	_, ok := msg.(*wire.Ping)
	require.True(t, ok, "expected Ping, got %T", msg)
	require.NoError(t, conn.Send(wire.Pong{}))

	msg, err = conn.Receive()
	require.NoError(t, err)
	_, ok = msg.(*wire.Hello)
	require.True(t, ok, "expected Hello, got %T", msg)
	require.NoError(t, conn.Send(wire.HelloResponse{Kind: wire.KindSelfPlay}))

	msg, err = conn.Receive()
	require.NoError(t, err)
	query, ok := msg.(*wire.SelfPlayQuery)
	require.True(t, ok, "expected SelfPlayQuery, got %T", msg)
	return query
}

func handshakeAsTrainer(t *testing.T, conn *wire.Conn) {
	t.Helper()

	msg, err := conn.Receive()
	require.NoError(t, err)
	_, ok := msg.(*wire.Ping)
	require.True(t, ok)
	require.NoError(t, conn.Send(wire.Pong{}))

	msg, err = conn.Receive()
	require.NoError(t, err)
	_, ok = msg.(*wire.Hello)
	require.True(t, ok)
	require.NoError(t, conn.Send(wire.HelloResponse{Kind: wire.KindTrainer}))
}

// TestHandshakeReachesSelfPlayQuery covers the opening worker protocol
// walk described in SPEC_FULL.md §4.3.
func TestHandshakeReachesSelfPlayQuery(t *testing.T) {
	_, addr := newTestServer(t, testStoreConfig(t))
	conn := dial(t, addr)
	defer conn.Close()

	query := handshakeAsSelfPlay(t, conn)
	require.Equal(t, "binary-tree", query.Game)
}

// TestDuplicateTrainerRegistrationRejectsNewcomer exercises I6: a second
// worker declaring itself the trainer is sent a rejection Ok and
// disconnected, while the first trainer stays registered.
func TestDuplicateTrainerRegistrationRejectsNewcomer(t *testing.T) {
	c, addr := newTestServer(t, testStoreConfig(t))

	first := dial(t, addr)
	defer first.Close()
	handshakeAsTrainer(t, first)

	require.Eventually(t, func() bool {
		return c.trainer != nil
	}, time.Second, 10*time.Millisecond)

	second := dial(t, addr)
	defer second.Close()

	msg, err := second.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Ping{}, msg)
	require.NoError(t, second.Send(wire.Pong{}))

	msg, err = second.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Hello{}, msg)
	require.NoError(t, second.Send(wire.HelloResponse{Kind: wire.KindTrainer}))

	msg, err = second.Receive()
	require.NoError(t, err)
	ok, isOk := msg.(*wire.Ok)
	require.True(t, isOk, "expected a rejection Ok, got %T", msg)
	require.Contains(t, ok.Message, "rejected")
}

// TestIngestSampleDedupesByState exercises S1: a second sample for an
// already-seen state is dropped and must not grow the accumulated buffer.
// ingestSample is exercised directly (no running event loop) since it is
// pure Coordinator-state mutation, independent of the transport that
// eventually delivers samples.
func TestIngestSampleDedupesByState(t *testing.T) {
	c := New("unused", testStoreConfig(t))

	sample := wire.Sample{State: []bool{true, false}, Policy: map[int32]float32{0: 1}}
	sess := newWorkerSession(nil)

	c.ingestSample(nil, sess, sample)
	c.ingestSample(nil, sess, sample)

	require.Len(t, c.accumulated, 1)
	require.Len(t, c.uniqueStates, 1)
	require.Contains(t, c.uniqueStateSet, game.KeyOf(sample.State))
}

// TestWantsMoreSamplesHonoursGrowthCap covers the bound scheduleFreeWorkers
// uses to stop requesting additional samples mid-training.
func TestWantsMoreSamplesHonoursGrowthCap(t *testing.T) {
	conf := testStoreConfig(t)
	conf.GenerationSize = 10
	conf.MaxGrowthWhileTraining = 0.2

	c := New("unused", conf)
	for i := 0; i < 11; i++ {
		c.accumulated = append(c.accumulated, wire.Sample{})
	}
	require.True(t, c.wantsMoreSamples(), "11 < 10*(1+0.2)=12, should still want more")

	c.accumulated = append(c.accumulated, wire.Sample{})
	require.False(t, c.wantsMoreSamples(), "12 samples reaches the 10*(1+0.2) cap")
}
