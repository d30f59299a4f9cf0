package feed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/dex-buybot/internal/model"
)

func TestSubscriber_ReceivesBuys(t *testing.T) {
	b := NewBroadcaster(time.Second, nil, nil)
	server := httptest.NewServer(b.Handler())
	defer server.Close()
	defer b.Close()

	s := NewSubscriber(DefaultSubscriberConfig("ws"+strings.TrimPrefix(server.URL, "http")), nil)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer s.Close()
	waitForClients(t, b, 1)

	b.Record(model.Buy{TxHash: "tx1", Pair: "ADA"})
	b.Record(model.Buy{TxHash: "tx2", Pair: "NIGHT"})

	for _, want := range []string{"tx1", "tx2"} {
		select {
		case buy := <-s.Buys():
			if buy.TxHash != want {
				t.Errorf("TxHash = %q, want %q", buy.TxHash, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestSubscriber_ServerClose(t *testing.T) {
	b := NewBroadcaster(time.Second, nil, nil)
	server := httptest.NewServer(b.Handler())
	defer server.Close()

	s := NewSubscriber(DefaultSubscriberConfig("ws"+strings.TrimPrefix(server.URL, "http")), nil)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer s.Close()
	waitForClients(t, b, 1)

	b.Close()

	select {
	case err := <-s.Errors():
		if err == nil {
			t.Error("expected non-nil error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connection error")
	}

	if _, ok := <-s.Buys(); ok {
		t.Error("Buys() should be closed after the read loop exits")
	}
}

func TestSubscriber_ConnectAfterClose(t *testing.T) {
	s := NewSubscriber(DefaultSubscriberConfig("ws://127.0.0.1:1/feed"), nil)
	s.Close()

	if err := s.Connect(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("Connect() = %v, want ErrAlreadyClosed", err)
	}
}
