// Package sse implements a Server-Sent Events broker that tells connected
// navigators when the sitemap changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Event types published by the broker.
const (
	EventSitemapUpdated = "sitemap.updated"
	EventSitemapFailed  = "sitemap.failed"
)

// clientBuffer is the number of frames a slow client may lag behind before
// frames are dropped for it.
const clientBuffer = 64

// Broker fans sitemap build events out to SSE clients. A client that joins
// late first receives the most recent event, so it learns the current etag
// without waiting for the next build.
//
// One goroutine owns the client set; the exported methods talk to it over
// channels.
type Broker struct {
	join   chan chan []byte
	leave  chan chan []byte
	frames chan []byte
	count  chan chan int

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBroker creates a broker and starts its loop. Close stops it.
func NewBroker() *Broker {
	b := &Broker{
		join:   make(chan chan []byte),
		leave:  make(chan chan []byte),
		frames: make(chan []byte, 16),
		count:  make(chan chan int),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	clients := make(map[chan []byte]struct{})
	var last []byte

	deliver := func(ch chan []byte, frame []byte) {
		select {
		case ch <- frame:
		default:
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			if last != nil {
				deliver(ch, last)
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case frame := <-b.frames:
			last = frame
			for ch := range clients {
				deliver(ch, frame)
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// PublishBuild reports the outcome of a sitemap rebuild: the new entity tag
// on success, the error message otherwise.
func (b *Broker) PublishBuild(etag string, err error) {
	if err != nil {
		b.send(encodeFrame(EventSitemapFailed, map[string]string{"error": err.Error()}))
		return
	}
	b.send(encodeFrame(EventSitemapUpdated, map[string]string{"etag": etag}))
}

func (b *Broker) send(frame []byte) {
	select {
	case b.frames <- frame:
	case <-b.done:
	}
}

func encodeFrame(event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, payload)
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes (GET /events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
