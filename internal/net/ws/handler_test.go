package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/logging"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/net/protocol"
)

func fastTuning() config.Tuning {
	tun := config.DefaultTuning()
	tun.SplashDelay = 0
	tun.StartDelay = 0
	return tun
}

func newTestServer(t *testing.T, cfg HandlerConfig) (*httptest.Server, *server.Server) {
	t.Helper()
	lobby := server.NewServer(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go lobby.Run(ctx)

	cfg.Lobby = lobby
	cfg.Logger = logging.Discard()
	if cfg.Tuning == nil {
		cfg.Tuning = fastTuning
	}
	srv := httptest.NewServer(NewHandler(cfg))
	t.Cleanup(srv.Close)
	return srv, lobby
}

func websocketURL(t *testing.T, baseURL string, query url.Values) string {
	t.Helper()

	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.Path = "/"
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

type client struct {
	t     *testing.T
	conn  *websocket.Conn
	codec protocol.Codec
}

func dial(t *testing.T, srv *httptest.Server, query url.Values) *client {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, query), nil)
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return &client{t: t, conn: conn, codec: protocol.CodecByName(query.Get("codec"))}
}

func (c *client) send(typ string, payload any) {
	c.t.Helper()
	data, err := c.codec.Encode(typ, payload)
	if err != nil {
		c.t.Fatal(err)
	}
	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	if err := c.conn.WriteMessage(msgType, data); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// await reads frames until one of type typ satisfies match.
func (c *client) await(typ string, match func(payload []byte) bool) []byte {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", typ, err)
		}
		if c.codec.Binary() != (msgType == websocket.BinaryMessage) {
			c.t.Fatalf("frame type %d for codec %s", msgType, c.codec.Name())
		}
		got, payload, err := c.codec.Decode(data)
		if err != nil {
			c.t.Fatal(err)
		}
		if got == typ && (match == nil || match(payload)) {
			return payload
		}
	}
}

func (c *client) awaitState(match func(protocol.State) bool) protocol.State {
	c.t.Helper()
	var st protocol.State
	c.await(protocol.TypeState, func(p []byte) bool {
		st = protocol.State{}
		if err := c.codec.Unmarshal(p, &st); err != nil {
			c.t.Fatal(err)
		}
		return match(st)
	})
	return st
}

func TestSessionPlays(t *testing.T) {
	for _, codecName := range []string{"json", "msgpack"} {
		t.Run(codecName, func(t *testing.T) {
			srv, _ := newTestServer(t, HandlerConfig{Seed: 1})
			c := dial(t, srv, url.Values{"codec": {codecName}, "name": {"alice"}})

			var welcome protocol.Welcome
			if err := c.codec.Unmarshal(c.await(protocol.TypeWelcome, nil), &welcome); err != nil {
				t.Fatal(err)
			}
			if welcome.Name != "alice" || welcome.Version != protocol.Version || welcome.ClientID == 0 {
				t.Fatalf("welcome = %+v", welcome)
			}

			c.awaitState(func(st protocol.State) bool { return st.Phase == "home" })
			c.send(protocol.TypeLayout, protocol.Layout{Width: 1000, Height: 800})
			c.send(protocol.TypeCommand, protocol.Command{Action: protocol.ActionStart})
			c.send(protocol.TypeInput, protocol.Input{Launch: true})

			st := c.awaitState(func(st protocol.State) bool { return st.Phase == "playing" && st.Launched })
			if st.Players != 1 || st.Rocket.Width != 100 {
				t.Fatalf("state = %+v", st)
			}

			c.send(protocol.TypeInput, protocol.Input{Cancel: true})
			c.awaitState(func(st protocol.State) bool { return st.Phase == "home" })
		})
	}
}

func TestSessionUnknownMessage(t *testing.T) {
	srv, _ := newTestServer(t, HandlerConfig{})
	c := dial(t, srv, url.Values{})
	c.await(protocol.TypeWelcome, nil)

	c.send("teleport", struct{}{})
	var n protocol.Notice
	if err := c.codec.Unmarshal(c.await(protocol.TypeNotice, nil), &n); err != nil {
		t.Fatal(err)
	}
	if n.Level != "warn" || !strings.Contains(n.Text, "teleport") {
		t.Fatalf("notice = %+v", n)
	}
}

func TestClaimDisabled(t *testing.T) {
	srv, _ := newTestServer(t, HandlerConfig{})
	c := dial(t, srv, url.Values{})
	c.await(protocol.TypeWelcome, nil)

	c.send(protocol.TypeCommand, protocol.Command{Action: protocol.ActionClaim})
	var res protocol.Claim
	if err := c.codec.Unmarshal(c.await(protocol.TypeClaim, nil), &res); err != nil {
		t.Fatal(err)
	}
	if res.OK || !strings.Contains(res.Error, "disabled") {
		t.Fatalf("claim = %+v", res)
	}
}

func TestClaimAfterSession(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"transactionHash":"0xfeed"}`))
	}))
	t.Cleanup(service.Close)

	short := func() config.Tuning {
		tun := fastTuning()
		tun.SessionDuration = 100 * time.Millisecond
		return tun
	}
	srv, _ := newTestServer(t, HandlerConfig{
		Tuning:  short,
		Airdrop: airdrop.New(service.URL, airdrop.WithLogger(logging.Discard())),
	})
	c := dial(t, srv, url.Values{})
	c.await(protocol.TypeWelcome, nil)

	// Claiming before the session ends is refused.
	c.send(protocol.TypeCommand, protocol.Command{Action: protocol.ActionClaim})
	var res protocol.Claim
	c.codec.Unmarshal(c.await(protocol.TypeClaim, nil), &res)
	if res.OK || !strings.Contains(res.Error, "finish") {
		t.Fatalf("early claim = %+v", res)
	}

	c.send(protocol.TypeLayout, protocol.Layout{Width: 1000, Height: 800})
	c.send(protocol.TypeCommand, protocol.Command{Action: protocol.ActionStart})
	c.send(protocol.TypeInput, protocol.Input{Launch: true})
	c.await(protocol.TypeSound, func(p []byte) bool {
		var s protocol.Sound
		c.codec.Unmarshal(p, &s)
		return s.Name == "victory"
	})
	c.awaitState(func(st protocol.State) bool { return st.Phase == "win" })

	// A zero-score session has nothing to claim; the service is not called.
	wallet := "0x" + strings.Repeat("ab", 20)
	c.send(protocol.TypeCommand, protocol.Command{Action: protocol.ActionClaim, Wallet: wallet})
	res = protocol.Claim{}
	c.codec.Unmarshal(c.await(protocol.TypeClaim, nil), &res)
	if res.OK || !strings.Contains(res.Error, "nothing to claim") {
		t.Fatalf("claim = %+v", res)
	}
}

func TestShutdownNotice(t *testing.T) {
	srv, lobby := newTestServer(t, HandlerConfig{})
	c := dial(t, srv, url.Values{})
	c.await(protocol.TypeWelcome, nil)
	deadline := time.Now().Add(time.Second)
	for lobby.Players() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	go lobby.Shutdown(100 * time.Millisecond)
	var n protocol.Notice
	c.codec.Unmarshal(c.await(protocol.TypeNotice, nil), &n)
	if n.Level != "shutdown" {
		t.Fatalf("notice = %+v", n)
	}
}

func TestPlayerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "guest"},
		{"  bob ", "bob"},
		{strings.Repeat("x", 40), strings.Repeat("x", 16)},
	}
	for _, tt := range tests {
		if got := playerName(tt.in); got != tt.want {
			t.Errorf("playerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
