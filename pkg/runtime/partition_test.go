package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corestream/corestream/pkg/event"
)

func TestManagerCreateAppRuntimePartitionIsolatesWindowState(t *testing.T) {
	def := &AppDefinition{
		Name:       "partitionApp",
		StreamDefs: []StreamDef{simpleStreamDef("trades")},
		Partitions: []Partition{
			{
				ID:    "bySymbol",
				Input: "trades",
				By:    Attr("symbol"),
				Queries: []Query{
					{
						ID: "lastTwo",
						From: &QuerySource{
							StreamID: "trades",
							Window:   &WindowSpec{Type: "length", Size: 2},
						},
					},
				},
			},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	var mu sync.Mutex
	counts := map[string]int{}
	require.NoError(t, rt.AddCallback("lastTwo", func(ce *event.ComplexEvent) {
		mu.Lock()
		counts[ce.OutputData[0].String()]++
		mu.Unlock()
	}))

	in, err := rt.InputHandler("trades")
	require.NoError(t, err)

	require.NoError(t, send(t, in, "AAPL", 150))
	require.NoError(t, send(t, in, "MSFT", 250))
	require.NoError(t, send(t, in, "AAPL", 151))

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return counts["AAPL"] == 2 && counts["MSFT"] == 1
	})
}

func send(t *testing.T, in InputHandler, symbol string, price float64) error {
	t.Helper()
	_, err := in.Send(context.Background(), []event.Value{event.String(symbol), event.Double(price)})
	return err
}
