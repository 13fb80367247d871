package ws

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/audio"
	loopconfig "github.com/tomz197/somanaut/internal/loop/config"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/net/protocol"
)

const (
	claimTimeout = 20 * time.Second
	// stateRefresh resends unchanged state so the hall of fame and player
	// count stay current on idle screens.
	stateRefresh = 30
)

var errShutdown = errors.New("ws: server shutting down")

type inbound struct {
	typ     string
	payload []byte
}

// session is one browser connection. All writes happen on the run goroutine.
type session struct {
	conn    *websocket.Conn
	codec   protocol.Codec
	lobby   server.Lobby
	handle  *server.ClientHandle
	name    string
	logger  *log.Logger
	airdrop *airdrop.Client

	game   *sim.Simulation
	sounds *audio.Recorder
	inbox  chan inbound
	claims chan protocol.Claim
	ctx    context.Context

	left, right    bool // Held
	launch, cancel bool // Latched until the next frame
	wallet         string
	claiming       bool
	claimed        bool // One claim per finished session
	lastPhase      sim.Phase
	lastSeq        uint64
	sinceState     int
	shutdownAt     time.Time
}

func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.ctx = ctx

	s.conn.SetReadLimit(loopconfig.SocketReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(loopconfig.SocketPongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(loopconfig.SocketPongWait))
		return nil
	})

	readErr := make(chan error, 1)
	go s.readLoop(ctx, readErr)

	if err := s.send(protocol.TypeWelcome, protocol.Welcome{
		Version:  protocol.Version,
		ClientID: s.handle.ID,
		Name:     s.name,
	}); err != nil {
		return err
	}

	frame := time.NewTicker(loopconfig.ClientTargetFrameTime)
	defer frame.Stop()
	ping := time.NewTicker(loopconfig.SocketPingPeriod)
	defer ping.Stop()
	last := time.Now()

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-readErr:
			return err
		case msg := <-s.inbox:
			err = s.apply(msg)
		case res := <-s.claims:
			s.claiming = false
			if res.OK {
				s.claimed = true
			}
			err = s.send(protocol.TypeClaim, res)
		case ev, ok := <-s.handle.EventsCh:
			if !ok {
				return nil
			}
			if ev.Type == server.EventServerShutdown {
				s.shutdownAt = time.Now().Add(time.Duration(loopconfig.ShutdownDisplaySeconds * float64(time.Second)))
				err = s.send(protocol.TypeNotice, protocol.Notice{Level: "shutdown", Text: "Server is shutting down"})
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(loopconfig.SocketWriteWait))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		case now := <-frame.C:
			dt := now.Sub(last)
			last = now
			err = s.tick(now, dt)
		}
		if errors.Is(err, errShutdown) {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(loopconfig.SocketWriteWait))
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// readLoop decodes frames and hands them to the run goroutine.
func (s *session) readLoop(ctx context.Context, errc chan<- error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			errc <- err
			return
		}
		typ, payload, err := s.codec.Decode(data)
		if err != nil {
			s.logger.Debug("discarding malformed message", "err", err)
			continue
		}
		select {
		case s.inbox <- inbound{typ: typ, payload: payload}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) apply(msg inbound) error {
	switch msg.typ {
	case protocol.TypeHello:
		var hello protocol.Hello
		if err := s.codec.Unmarshal(msg.payload, &hello); err != nil {
			return s.warn(err)
		}
		if hello.Wallet != "" {
			s.wallet = hello.Wallet
		}
	case protocol.TypeInput:
		var in protocol.Input
		if err := s.codec.Unmarshal(msg.payload, &in); err != nil {
			return s.warn(err)
		}
		s.left, s.right = in.Left, in.Right
		s.launch = s.launch || in.Launch
		s.cancel = s.cancel || in.Cancel
	case protocol.TypeCommand:
		var cmd protocol.Command
		if err := s.codec.Unmarshal(msg.payload, &cmd); err != nil {
			return s.warn(err)
		}
		switch cmd.Action {
		case protocol.ActionStart:
			s.game.Start()
		case protocol.ActionMenu:
			s.game.ReturnToMenu()
		case protocol.ActionClaim:
			return s.claim(cmd.Wallet)
		default:
			return s.notice("warn", "unknown command "+cmd.Action)
		}
	case protocol.TypeLayout:
		var l protocol.Layout
		if err := s.codec.Unmarshal(msg.payload, &l); err != nil {
			return s.warn(err)
		}
		if l.Width <= 0 || l.Height <= 0 {
			return s.notice("warn", "layout needs a positive size")
		}
		s.game.SetLayout(l.SimLayout())
	case protocol.TypeOrientation:
		var o protocol.Orientation
		if err := s.codec.Unmarshal(msg.payload, &o); err != nil {
			return s.warn(err)
		}
		s.game.SetOrientationBlocked(o.Blocked)
	default:
		return s.notice("warn", "unknown message type "+msg.typ)
	}
	return nil
}

// tick advances the simulation one display frame and streams the results.
func (s *session) tick(now time.Time, dt time.Duration) error {
	if !s.shutdownAt.IsZero() && now.After(s.shutdownAt) {
		return errShutdown
	}

	s.game.Frame(sim.Input{Left: s.left, Right: s.right, Launch: s.launch, Cancel: s.cancel}, dt)
	s.launch, s.cancel = false, false

	for _, snd := range s.sounds.Drain() {
		if err := s.send(protocol.TypeSound, protocol.Sound{Name: snd.String()}); err != nil {
			return err
		}
	}

	snap := s.game.Snapshot()
	if snap.Phase.Ended() && !s.lastPhase.Ended() {
		s.lobby.ReportScore(s.handle.ID, snap.Score)
		s.claimed = false
	}
	s.lastPhase = snap.Phase

	s.sinceState++
	if snap.Seq == s.lastSeq && s.sinceState < stateRefresh {
		return nil
	}
	s.lastSeq = snap.Seq
	s.sinceState = 0
	return s.send(protocol.TypeState, s.state(snap))
}

func (s *session) state(snap *sim.Snapshot) protocol.State {
	st := protocol.NewState(snap)
	for _, e := range s.lobby.TopScores() {
		st.HallOfFame = append(st.HallOfFame, protocol.HallEntry{Name: e.Username, Score: e.Score})
	}
	st.Players = s.lobby.Players()
	return st
}

// claim starts an airdrop for the finished session's reward. The result
// arrives on s.claims.
func (s *session) claim(wallet string) error {
	snap := s.game.Snapshot()
	if wallet == "" {
		wallet = s.wallet
	}

	var reason string
	switch {
	case s.airdrop == nil:
		reason = "claims are disabled on this server"
	case !snap.Phase.Ended():
		reason = "finish a session first"
	case s.claimed:
		reason = "reward already claimed for this session"
	case s.claiming:
		reason = airdrop.ErrInFlight.Error()
	}
	if reason != "" {
		return s.send(protocol.TypeClaim, protocol.Claim{Amount: snap.Reward, Error: reason})
	}

	s.claiming = true
	amount := snap.Reward
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, claimTimeout)
		defer cancel()
		res, err := s.airdrop.Claim(ctx, wallet, amount)
		out := protocol.Claim{OK: err == nil, Amount: amount, Tx: res.TransactionHash}
		if err != nil {
			out.Error = err.Error()
		}
		s.claims <- out
	}()
	return nil
}

func (s *session) warn(err error) error {
	s.logger.Debug("bad payload", "err", err)
	return s.notice("warn", err.Error())
}

func (s *session) notice(level, text string) error {
	return s.send(protocol.TypeNotice, protocol.Notice{Level: level, Text: text})
}

func (s *session) send(typ string, payload any) error {
	data, err := s.codec.Encode(typ, payload)
	if err != nil {
		return err
	}
	return writeFrame(s.conn, s.codec, data)
}
