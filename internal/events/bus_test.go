package events

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type priceChanged struct {
	ProductID int64 `json:"productId"`
}

func (priceChanged) Topic() Topic { return "test.price_changed" }

type stockMoved struct{}

func (stockMoved) Topic() Topic { return "test.stock_moved" }

func TestOnReceivesOnlyItsTopic(t *testing.T) {
	bus := NewBus(nil)
	var got []int64
	On(bus, func(_ context.Context, evt priceChanged) {
		got = append(got, evt.ProductID)
	})

	bus.Publish(context.Background(), priceChanged{ProductID: 3})
	bus.Publish(context.Background(), stockMoved{})
	bus.Publish(context.Background(), priceChanged{ProductID: 5})

	require.Equal(t, []int64{3, 5}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(nil)
	count := 0
	stop := bus.SubscribeAll(func(context.Context, Event) { count++ })

	bus.Publish(context.Background(), stockMoved{})
	stop()
	stop()
	bus.Publish(context.Background(), stockMoved{})

	require.Equal(t, 1, count)
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(nil)
	delivered := false
	bus.Subscribe("test.stock_moved", func(context.Context, Event) { panic("boom") })
	bus.Subscribe("test.stock_moved", func(context.Context, Event) { delivered = true })

	require.NotPanics(t, func() { bus.Publish(context.Background(), stockMoved{}) })
	require.True(t, delivered)
}

func TestStreamWritesServerSentEvents(t *testing.T) {
	bus := NewBus(nil)
	srv := httptest.NewServer(NewStream(bus, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "retry:"))

	// The subscription is registered before the retry preamble is flushed.
	bus.Publish(context.Background(), priceChanged{ProductID: 42})

	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	require.Equal(t, "event: test.price_changed", lines[0])
	require.Equal(t, `data: {"productId":42}`, lines[1])
}

func TestStreamCloseEndsConnections(t *testing.T) {
	stream := NewStream(NewBus(nil), nil)
	srv := httptest.NewServer(stream)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	stream.Close()
	stream.Close()
	_, err = io.ReadAll(reader)
	require.NoError(t, err)
}
