package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/object"
)

func testSnapshot() *sim.Snapshot {
	return &sim.Snapshot{
		Seq:        7,
		Phase:      sim.PhasePlaying,
		Launched:   true,
		Score:      50,
		Reward:     0.5,
		HighScores: []int{90, 50},
		Elapsed:    1500 * time.Millisecond,
		Remaining:  178500 * time.Millisecond,
		Duration:   3 * time.Minute,
		Background: 45,
		Layout:     object.Layout{Compact: true, Width: 400, Height: 800},
		Rocket:     object.Rocket{X: 40, Bottom: 50, Width: 33, Height: 80, Frame: 2},
		Junk: []object.Junk{
			{ID: 3, X: 10, Y: 20, Width: 30, Height: 30, Kind: object.KindJunk},
			{ID: 4, X: 60, Y: 5, Width: 15, Height: 15, Kind: object.KindMate},
		},
		Texts:    []object.FloatingText{{ID: 5, X: 52, Y: 60, Text: "+20", Opacity: 0.5}},
		Confetti: []object.Confetti{{ID: 6, X: 1, Y: 2, VX: -0.5, VY: 1.5, Color: "#FFD700", Size: 8, Rotation: 90, RotationSpeed: 3}},
	}
}

func TestNewState(t *testing.T) {
	st := NewState(testSnapshot())
	if st.Phase != "playing" || st.ElapsedMs != 1500 || st.RemainingMs != 178500 || st.DurationMs != 180000 {
		t.Fatalf("state = %+v", st)
	}
	if !st.Compact || st.Rocket.Frame != 2 || st.Rocket.Width != 33 {
		t.Fatalf("rocket/layout = %+v compact=%v", st.Rocket, st.Compact)
	}
	if len(st.Junk) != 2 || st.Junk[0].Kind != "junk" || st.Junk[1].Kind != "mate" {
		t.Fatalf("junk = %+v", st.Junk)
	}
	if st.Texts[0].Text != "+20" || st.Confetti[0].Color != "#FFD700" {
		t.Fatalf("effects = %+v %+v", st.Texts, st.Confetti)
	}
	if p := st.Confetti[0]; p.VX != -0.5 || p.VY != 1.5 || p.Spin != 3 {
		t.Fatalf("confetti motion = %+v", p)
	}
}

func TestJSONWireFormat(t *testing.T) {
	data, err := JSONCodec{}.Encode(TypeSound, Sound{Name: "collect"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"t":"sound","p":{"name":"collect"}}` {
		t.Fatalf("encoded %s", data)
	}

	var raw map[string]any
	data, _ = JSONCodec{}.Encode(TypeState, NewState(&sim.Snapshot{}))
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	p := raw["p"].(map[string]any)
	for _, key := range []string{"junk", "texts", "confetti", "hallOfFame"} {
		if _, ok := p[key].([]any); !ok {
			t.Errorf("%s = %v, want an array", key, p[key])
		}
	}
}

func TestCodecsCarryState(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(TypeState, NewState(testSnapshot()))
			if err != nil {
				t.Fatal(err)
			}
			typ, payload, err := codec.Decode(data)
			if err != nil || typ != TypeState {
				t.Fatalf("Decode = %q, %v", typ, err)
			}
			var st State
			if err := codec.Unmarshal(payload, &st); err != nil {
				t.Fatal(err)
			}
			if st.Seq != 7 || st.Score != 50 || st.Reward != 0.5 || len(st.HighScores) != 2 {
				t.Fatalf("state = %+v", st)
			}
			if len(st.Junk) != 2 || st.Junk[1].Kind != "mate" || st.Junk[1].X != 60 {
				t.Fatalf("junk = %+v", st.Junk)
			}
		})
	}
}

func TestCodecsDecodeClientMessages(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(TypeInput, Input{Left: true, Launch: true})
			if err != nil {
				t.Fatal(err)
			}
			typ, payload, err := codec.Decode(data)
			if err != nil || typ != TypeInput {
				t.Fatalf("Decode = %q, %v", typ, err)
			}
			var in Input
			if err := codec.Unmarshal(payload, &in); err != nil {
				t.Fatal(err)
			}
			if got := in.SimInput(); got != (sim.Input{Left: true, Launch: true}) {
				t.Fatalf("input = %+v", got)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, err := (JSONCodec{}).Decode([]byte("{")); !errors.Is(err, ErrMalformed) {
		t.Fatalf("json: %v", err)
	}
	if _, _, err := (JSONCodec{}).Decode([]byte(`{"p":{}}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("json missing type: %v", err)
	}
	if _, _, err := (MsgpackCodec{}).Decode([]byte{0xc1}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("msgpack: %v", err)
	}
	var l Layout
	if err := (JSONCodec{}).Unmarshal([]byte(`{"width":"wide"}`), &l); !errors.Is(err, ErrMalformed) {
		t.Fatalf("payload: %v", err)
	}
}

func TestCodecByName(t *testing.T) {
	if CodecByName("msgpack").Name() != "msgpack" || !CodecByName("msgpack").Binary() {
		t.Fatal("msgpack not selected")
	}
	if CodecByName("").Name() != "json" || CodecByName("xml").Binary() {
		t.Fatal("default is not json")
	}
}
