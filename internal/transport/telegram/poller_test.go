package telegram

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/transport/chat"
)

type handlerMock struct {
	mu     sync.Mutex
	events []chat.Event
	done   chan struct{}
	want   int
}

func newHandlerMock(want int) *handlerMock {
	return &handlerMock{done: make(chan struct{}), want: want}
}

func (h *handlerMock) Handle(ev chat.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) == h.want {
		close(h.done)
	}
}

func TestPoller_DeliversEvents(t *testing.T) {
	var mu sync.Mutex
	offsets := []string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		mu.Lock()
		offsets = append(offsets, r.PostForm.Get("offset"))
		first := len(offsets) == 1
		mu.Unlock()
		if first {
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":10,"message":{"message_id":1,"from":{"id":5,"first_name":"Ivan"},"chat":{"id":5},"text":"hello"}},
				{"update_id":11,"callback_query":{"id":"cb-1","from":{"id":5,"first_name":"Ivan"},"message":{"message_id":2,"chat":{"id":5}},"data":"mm:0"}},
				{"update_id":12,"message":{"message_id":3,"from":{"id":6,"is_bot":true},"chat":{"id":6},"text":"spam"}}
			]}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	handler := newHandlerMock(2)
	p := NewPoller(c, handler, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not delivered")
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.events) != 2 {
		t.Fatalf("got %d events, want 2 (bot messages are dropped)", len(handler.events))
	}
	msg := handler.events[0]
	if msg.User.ID != 5 || msg.Text != "hello" || msg.IsCallback() {
		t.Errorf("unexpected message event: %+v", msg)
	}
	cb := handler.events[1]
	if cb.CallbackID != "cb-1" || cb.Payload != "mm:0" || cb.MessageID != 2 {
		t.Errorf("unexpected callback event: %+v", cb)
	}

	mu.Lock()
	defer mu.Unlock()
	// The first poll has no offset; after update 12 the offset is 13.
	if offsets[0] != "" {
		t.Errorf("first offset = %q, want empty", offsets[0])
	}
	if len(offsets) > 1 && offsets[1] != "13" {
		t.Errorf("second offset = %q, want 13", offsets[1])
	}
}
