package browser

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Tap passively buffers, in arrival order, the bodies of responses whose URL
// matches the attach predicate. Purely observational: it never mutates
// requests or responses. If the page closes mid-capture, Take simply keeps
// returning nothing.
type Tap struct {
	buf    *responseBuffer
	cancel context.CancelFunc
}

func attachTap(page *rod.Page, match func(url string) bool) *Tap {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tap{
		buf:    newResponseBuffer(),
		cancel: cancel,
	}

	scoped := page.Context(ctx)

	// Response bodies are only guaranteed complete once loading finishes, so
	// matching request IDs are remembered at ResponseReceived and the body is
	// pulled at LoadingFinished.
	pending := make(map[proto.NetworkRequestID]bool)
	var mu sync.Mutex

	go scoped.EachEvent(
		func(ev *proto.NetworkResponseReceived) {
			if ev.Response == nil || !match(ev.Response.URL) {
				return
			}
			mu.Lock()
			pending[ev.RequestID] = true
			mu.Unlock()
		},
		func(ev *proto.NetworkLoadingFinished) {
			mu.Lock()
			matched := pending[ev.RequestID]
			delete(pending, ev.RequestID)
			mu.Unlock()
			if !matched {
				return
			}

			res, err := proto.NetworkGetResponseBody{RequestID: ev.RequestID}.Call(scoped)
			if err != nil {
				// Session may already be closing; drop the response
				return
			}
			body := []byte(res.Body)
			if res.Base64Encoded {
				decoded, err := base64.StdEncoding.DecodeString(res.Body)
				if err != nil {
					return
				}
				body = decoded
			}
			t.buf.push(body)
		},
	)()

	return t
}

// Take pops the oldest buffered response body. Non-blocking; the second
// return is false when the buffer is empty or the tap is detached.
func (t *Tap) Take() ([]byte, bool) {
	return t.buf.pop()
}

// Detach stops buffering and clears the queue
func (t *Tap) Detach() {
	t.cancel()
	t.buf.close()
}

// responseBuffer is an unbounded FIFO of response bodies
type responseBuffer struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{}
}

func (b *responseBuffer) push(body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.items = append(b.items, body)
}

func (b *responseBuffer) pop() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return nil, false
	}
	item := b.items[0]
	b.items = b.items[1:]
	return item, true
}

func (b *responseBuffer) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.items = nil
}
