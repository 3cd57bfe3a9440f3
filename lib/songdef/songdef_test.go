// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package songdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/songbridge/songbridge/song"
)

const template = `{
	// A small live set: drums, bass, two scenes.
	"tempo": 98,
	"signature_numerator": 4,
	"signature_denominator": 4,
	"return_tracks": 2,
	"tracks": [
		{"name": "Drums", "kind": "midi", "color": 5},
		{"name": "Bass", "kind": "midi"},
		{"name": "Vocals", "kind": "audio"}, // trailing comma below is fine
	],
	"scenes": [
		{"name": "Verse"},
		{"name": "Chorus", "tempo": 120},
	],
}`

func TestParseJSONC(t *testing.T) {
	definition, err := Parse([]byte(template))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if definition.Tempo != 98 || len(definition.Tracks) != 3 || len(definition.Scenes) != 2 {
		t.Fatalf("definition: %+v", definition)
	}
	if definition.Tracks[2].Kind != "audio" {
		t.Fatalf("track kinds: %+v", definition.Tracks)
	}
	if err := definition.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseRejectsBadJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"tempo": `)); err == nil {
		t.Fatal("malformed template accepted")
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	definition := &Definition{
		Tempo:              5,
		SignatureNumerator: 3,
		ReturnTracks:       -1,
		Tracks:             []TrackDef{{Name: "X", Kind: "video"}},
	}
	err := definition.Validate()
	if err == nil {
		t.Fatal("invalid definition accepted")
	}
	message := err.Error()
	for _, want := range []string{"tempo", "signature", "return_tracks", "kind"} {
		if !strings.Contains(message, want) {
			t.Fatalf("error %q misses %q", message, want)
		}
	}
}

func TestApply(t *testing.T) {
	definition, err := Parse([]byte(template))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := song.New()
	if err := definition.Apply(s); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if s.Tempo() != 98 || s.TrackCount() != 3 || s.SceneCount() != 2 || s.ReturnCount() != 2 {
		t.Fatalf("song shape: tempo=%g tracks=%d scenes=%d returns=%d",
			s.Tempo(), s.TrackCount(), s.SceneCount(), s.ReturnCount())
	}
	track, _ := s.Track(0)
	if track.Name() != "Drums" || track.Color() != 5 || track.SlotCount() != 2 {
		t.Fatalf("track 0: name=%q color=%d slots=%d", track.Name(), track.Color(), track.SlotCount())
	}
	vocals, _ := s.Track(2)
	if vocals.Kind() != song.KindAudio {
		t.Fatalf("vocals kind: %v", vocals.Kind())
	}
	scene, _ := s.Scene(1)
	if scene.Name() != "Chorus" || scene.Tempo() != 120 {
		t.Fatalf("scene 1: %q tempo=%g", scene.Name(), scene.Tempo())
	}
	// Tracks get one send per return track.
	if len(track.Sends()) != 2 {
		t.Fatalf("sends: %d", len(track.Sends()))
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.jsonc")
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	definition, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if definition.Tempo != 98 {
		t.Fatalf("tempo: %g", definition.Tempo)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("missing file accepted")
	}
}
