package cmd

import (
	"context"
	"os"
	"os/signal"
)

// SignalContext returns a context that is cancelled when one of
// TerminationSignals is received, along with a stop function that must be
// called (typically via defer) to release the underlying signal
// notification once it's no longer needed.
func SignalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, TerminationSignals...)

	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}
