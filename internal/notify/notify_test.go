package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/dex-buybot/internal/model"
)

func TestWebhookSender_Send(t *testing.T) {
	var got webhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL, time.Second, nil)
	p := Payload{
		Title:  "New Buy",
		Color:  0x00FF00,
		Fields: []Field{{Name: "Spent", Value: "**1 ADA**", Inline: true}},
		Footer: &Footer{Text: "Buy Bot • DexHunter"},
	}
	if err := s.Send(context.Background(), p); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("len(embeds) = %d, want 1", len(got.Embeds))
	}
	if got.Embeds[0].Title != "New Buy" || got.Embeds[0].Color != 0x00FF00 {
		t.Errorf("embed = %+v", got.Embeds[0])
	}
	if got.Embeds[0].Footer == nil || got.Embeds[0].Footer.Text != "Buy Bot • DexHunter" {
		t.Errorf("footer = %+v", got.Embeds[0].Footer)
	}
}

func TestWebhookSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Invalid Form Body"}`))
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL, time.Second, nil)
	err := s.Send(context.Background(), Payload{Title: "x"})

	var whErr *WebhookError
	if !errors.As(err, &whErr) {
		t.Fatalf("expected *WebhookError, got %v", err)
	}
	if whErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", whErr.StatusCode)
	}
}

func TestPayload_OmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(Payload{Color: 1})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"color":1}` {
		t.Errorf("Marshal = %s, want {\"color\":1}", data)
	}
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	times []time.Time
	fail  map[string]bool
}

func (s *recordingSender) Send(_ context.Context, p Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, p.Title)
	s.times = append(s.times, time.Now())
	if s.fail[p.Title] {
		return errors.New("send failed")
	}
	return nil
}

type recordingRecorder struct {
	hashes []string
}

func (r *recordingRecorder) Record(b model.Buy) {
	r.hashes = append(r.hashes, b.TxHash)
}

func jobs(hashes ...string) []Job {
	out := make([]Job, len(hashes))
	for i, h := range hashes {
		out[i] = Job{Buy: model.Buy{TxHash: h, Pair: "ADA"}, Payload: Payload{Title: h}}
	}
	return out
}

func TestDispatcher_OrderAndDelay(t *testing.T) {
	sender := &recordingSender{}
	rec := &recordingRecorder{}
	d := NewDispatcher(sender, 20*time.Millisecond, nil, nil, rec)

	sent := d.Dispatch(context.Background(), jobs("a", "b", "c"))

	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if sender.sent[i] != want[i] {
			t.Errorf("sent[%d] = %s, want %s", i, sender.sent[i], want[i])
		}
		if rec.hashes[i] != want[i] {
			t.Errorf("recorded[%d] = %s, want %s", i, rec.hashes[i], want[i])
		}
	}
	for i := 1; i < len(sender.times); i++ {
		if gap := sender.times[i].Sub(sender.times[i-1]); gap < 20*time.Millisecond {
			t.Errorf("gap between send %d and %d = %v, want >= 20ms", i-1, i, gap)
		}
	}
}

func TestDispatcher_FailureDoesNotStopQueue(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"b": true}}
	rec := &recordingRecorder{}
	d := NewDispatcher(sender, 0, nil, nil, rec)

	sent := d.Dispatch(context.Background(), jobs("a", "b", "c"))

	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(sender.sent) != 3 {
		t.Errorf("attempts = %d, want 3", len(sender.sent))
	}
	if len(rec.hashes) != 3 {
		t.Errorf("recorded = %d, want 3 (failed sends are still recorded)", len(rec.hashes))
	}
}

func TestDispatcher_Cancelled(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Hour, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int)
	go func() {
		done <- d.Dispatch(ctx, jobs("a", "b"))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case sent := <-done:
		if sent != 1 {
			t.Errorf("sent = %d, want 1", sent)
		}
	case <-time.After(time.Second):
		t.Fatal("Dispatch did not return after cancellation")
	}
}

func TestDispatcher_Empty(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Hour, nil, nil)
	if sent := d.Dispatch(context.Background(), nil); sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}
