package preview

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_PublishReachesConnectedClient(t *testing.T) {
	sink, err := NewSink("127.0.0.1:0")
	require.NoError(t, err)
	defer sink.Close()

	conn, err := net.Dial("tcp", sink.listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// give acceptLoop a moment to register the new connection before
	// publishing, since registration happens on its own goroutine.
	time.Sleep(10 * time.Millisecond)

	sink.Publish(Event{Iteration: 3, Kind: "iteration_end", ElapsedSecs: 1.5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(line, &ev))
	assert.Equal(t, uint64(3), ev.Iteration)
	assert.Equal(t, "iteration_end", ev.Kind)
	assert.Equal(t, sink.RunID().String(), ev.RunID)
}

func TestSink_PublishWithNoClientsDoesNotBlock(t *testing.T) {
	sink, err := NewSink("127.0.0.1:0")
	require.NoError(t, err)
	defer sink.Close()

	done := make(chan struct{})
	go func() {
		sink.Publish(Event{Iteration: 1, Kind: "iteration_start"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no connected clients")
	}
}

func TestSink_CloseDisconnectsClients(t *testing.T) {
	sink, err := NewSink("127.0.0.1:0")
	require.NoError(t, err)

	conn, err := net.Dial("tcp", sink.listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, sink.Close())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err, "connection should be closed once the sink shuts down")
}
