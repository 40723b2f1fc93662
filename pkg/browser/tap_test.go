package browser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBufferFIFOOrder(t *testing.T) {
	buf := newResponseBuffer()
	buf.push([]byte("first"))
	buf.push([]byte("second"))
	buf.push([]byte("third"))

	for _, want := range []string{"first", "second", "third"} {
		got, ok := buf.pop()
		assert.True(t, ok)
		assert.Equal(t, want, string(got))
	}

	_, ok := buf.pop()
	assert.False(t, ok)
}

func TestResponseBufferEmptyPop(t *testing.T) {
	buf := newResponseBuffer()
	body, ok := buf.pop()
	assert.Nil(t, body)
	assert.False(t, ok)
}

func TestResponseBufferClosedDropsAndRejects(t *testing.T) {
	buf := newResponseBuffer()
	buf.push([]byte("kept"))
	buf.close()

	// Queue is cleared on close
	_, ok := buf.pop()
	assert.False(t, ok)

	// Pushes after close are ignored
	buf.push([]byte("late"))
	_, ok = buf.pop()
	assert.False(t, ok)
}

func TestResponseBufferConcurrentPush(t *testing.T) {
	buf := newResponseBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.push([]byte("x"))
		}()
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := buf.pop(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 50, count)
}
