package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/logging"
	"github.com/tomz197/somanaut/internal/loop/client"
)

func TestRunQuitsOnQ(t *testing.T) {
	tun := config.DefaultTuning()
	var out bytes.Buffer
	opts := client.ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 80, 24, nil },
		Logger:       logging.Discard(),
		Tuning:       &tun,
	}

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), bufio.NewReader(strings.NewReader("q")), &out, opts)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	if out.Len() == 0 {
		t.Fatal("nothing rendered")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tun := config.DefaultTuning()
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, bufio.NewReader(pr), io.Discard, client.ClientOptions{
			TermSizeFunc: func() (int, int, error) { return 80, 24, nil },
			Logger:       logging.Discard(),
			Tuning:       &tun,
		})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	// The shutdown screen stays up for its countdown unless Q is pressed.
	pw.Write([]byte("q"))
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
