package input

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func readAll(t *testing.T, data string) (*Stream, Input) {
	t.Helper()
	s := StartStream(bufio.NewReader(strings.NewReader(data)))
	// Let the reader goroutine buffer everything so escape sequences are
	// parsed in one drain.
	time.Sleep(20 * time.Millisecond)
	deadline := time.Now().Add(time.Second)
	var in Input
	var pressed []byte
	for !s.Closed() && time.Now().Before(deadline) {
		in = ReadInput(s)
		pressed = append(pressed, in.Pressed...)
	}
	in.Pressed = pressed
	return s, in
}

func TestArrowKeys(t *testing.T) {
	s, _ := readAll(t, "\x1b[D")
	in := ReadInput(s)
	if !in.Left || in.Right || in.Escape {
		t.Fatalf("got %+v, want only Left", in)
	}
}

func TestLetterKeys(t *testing.T) {
	s, in := readAll(t, "dmc ")
	if string(in.Pressed) != "dmc " {
		t.Fatalf("pressed = %q", in.Pressed)
	}
	now := ReadInput(s)
	if !now.Right || !now.Mute || !now.Claim || !now.Space {
		t.Fatalf("got %+v", now)
	}
}

func TestKeysExpire(t *testing.T) {
	s, _ := readAll(t, "a")
	time.Sleep(2 * keyHoldDuration)
	if in := ReadInput(s); in.Left {
		t.Fatal("left still held after hold duration")
	}
}

func TestResetKeyInput(t *testing.T) {
	s, _ := readAll(t, "\r")
	ResetKeyInput(s)
	if in := ReadInput(s); in.Enter {
		t.Fatal("enter survived reset")
	}
}
