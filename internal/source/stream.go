package source

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"peermap/internal/model"
)

// ErrStreamClosed reports a snapshot stream the remote side ended cleanly.
var ErrStreamClosed = errors.New("snapshot stream closed")

// Stream reads topology snapshots from a websocket endpoint and hands each
// one to submit until ctx is done or the connection breaks.
func Stream(ctx context.Context, url string, submit func(model.Snapshot)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Closing the connection is what unblocks ReadJSON on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var snap model.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrStreamClosed
			}
			return err
		}
		submit(snap)
	}
}

// StreamLoop keeps a snapshot stream alive, redialing after retry whenever
// it drops. It returns only when ctx is done.
func StreamLoop(ctx context.Context, url string, retry time.Duration, submit func(model.Snapshot)) error {
	for {
		err := Stream(ctx, url, submit)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("snapshot stream dropped: %v (redial in %s)", err, retry)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}
