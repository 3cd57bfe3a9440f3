// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package songdef provides parsing and validation for song template
// files: the initial tracks, scenes and transport settings a server
// starts from. Templates are authored on disk as JSONC (JSON extended
// with comments and trailing commas).
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Definition
//  2. Validate: structural checks (track kinds, tempo range)
//  3. Apply: build the song graph from the definition
package songdef

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/songbridge/songbridge/song"
)

// Definition is a song template. Zero values mean "use the
// application default": a zero tempo keeps 120 BPM, a zero signature
// keeps 4/4.
type Definition struct {
	Tempo                float64 `json:"tempo,omitempty"`
	SignatureNumerator   int     `json:"signature_numerator,omitempty"`
	SignatureDenominator int     `json:"signature_denominator,omitempty"`

	// ReturnTracks is the number of return tracks to create.
	ReturnTracks int `json:"return_tracks,omitempty"`

	Tracks []TrackDef `json:"tracks,omitempty"`
	Scenes []SceneDef `json:"scenes,omitempty"`
}

// TrackDef describes one initial track.
type TrackDef struct {
	Name string `json:"name"`
	// Kind is "midi" or "audio". Empty means midi.
	Kind  string `json:"kind,omitempty"`
	Color int    `json:"color,omitempty"`
}

// SceneDef describes one initial scene.
type SceneDef struct {
	Name  string  `json:"name"`
	Tempo float64 `json:"tempo,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Definition.
func Parse(data []byte) (*Definition, error) {
	stripped := jsonc.ToJSON(data)

	var definition Definition
	if err := json.Unmarshal(stripped, &definition); err != nil {
		return nil, fmt.Errorf("parsing song template: %w", err)
	}
	return &definition, nil
}

// ReadFile reads a JSONC template file from disk and parses it.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	definition, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}

// Validate performs structural checks. All failures are reported, not
// just the first.
func (d *Definition) Validate() error {
	var errs []error
	if d.Tempo != 0 && (d.Tempo < 20 || d.Tempo > 999) {
		errs = append(errs, fmt.Errorf("tempo %g out of range (20 to 999 BPM)", d.Tempo))
	}
	if (d.SignatureNumerator == 0) != (d.SignatureDenominator == 0) {
		errs = append(errs, errors.New("signature numerator and denominator must be set together"))
	}
	if d.ReturnTracks < 0 {
		errs = append(errs, fmt.Errorf("return_tracks must be non-negative, got %d", d.ReturnTracks))
	}
	for i, track := range d.Tracks {
		switch track.Kind {
		case "", "midi", "audio":
		default:
			errs = append(errs, fmt.Errorf("track %d (%q): unknown kind %q", i, track.Name, track.Kind))
		}
	}
	for i, scene := range d.Scenes {
		if scene.Tempo != 0 && (scene.Tempo < 20 || scene.Tempo > 999) {
			errs = append(errs, fmt.Errorf("scene %d (%q): tempo %g out of range (20 to 999 BPM)", i, scene.Name, scene.Tempo))
		}
	}
	return errors.Join(errs...)
}

// Apply builds the song graph from the definition: scenes first so
// new tracks get a full slot grid, then tracks, then returns.
func (d *Definition) Apply(s *song.Song) error {
	if d.Tempo != 0 {
		if err := s.SetTempo(d.Tempo); err != nil {
			return err
		}
	}
	if d.SignatureNumerator != 0 {
		if err := s.SetSignature(d.SignatureNumerator, d.SignatureDenominator); err != nil {
			return err
		}
	}
	for _, def := range d.Scenes {
		scene, _, err := s.CreateScene(-1)
		if err != nil {
			return err
		}
		if def.Name != "" {
			scene.SetName(def.Name)
		}
		if err := scene.SetTempo(def.Tempo); err != nil {
			return fmt.Errorf("scene %q: %w", def.Name, err)
		}
	}
	for i, def := range d.Tracks {
		var track *song.Track
		var err error
		if def.Kind == "audio" {
			track, _, err = s.CreateAudioTrack(-1)
		} else {
			track, _, err = s.CreateMIDITrack(-1)
		}
		if err != nil {
			return fmt.Errorf("track %d (%q): %w", i, def.Name, err)
		}
		if def.Name != "" {
			track.SetName(def.Name)
		}
		track.SetColor(def.Color)
	}
	for i := 0; i < d.ReturnTracks; i++ {
		s.CreateReturnTrack()
	}
	return nil
}
