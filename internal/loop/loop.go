// Package loop runs a single-player session on a local terminal. Remote hosts
// share one lobby between many clients; the local game gets a private one so
// the same client code drives both.
package loop

import (
	"bufio"
	"context"
	"io"

	"github.com/tomz197/somanaut/internal/loop/client"
	"github.com/tomz197/somanaut/internal/loop/server"
)

// Run plays on r and w until the player quits or ctx is cancelled. A
// cancelled context shows the shutdown screen before returning.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts client.ClientOptions) error {
	lobby := server.NewServer(opts.Logger)
	lobbyCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lobby.Run(lobbyCtx)

	c := client.NewClient(lobby, r, w, opts)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			lobby.Shutdown(0)
		case <-done:
		}
	}()
	return c.Run()
}
