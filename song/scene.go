// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import "fmt"

// Scene is one row of the session grid. A scene may carry its own
// tempo; firing such a scene changes the song tempo.
type Scene struct {
	name  string
	tempo float64
	color int
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// SetName renames the scene.
func (s *Scene) SetName(name string) { s.name = name }

// Tempo returns the scene tempo, or 0 when the scene has none.
func (s *Scene) Tempo() float64 { return s.tempo }

// SetTempo assigns a tempo to the scene. Zero clears it. A nonzero
// tempo obeys the same range as the song tempo, so firing the scene
// can never push the song out of range.
func (s *Scene) SetTempo(tempo float64) error {
	if tempo != 0 && (tempo < minTempo || tempo > maxTempo) {
		return fmt.Errorf("tempo %g out of range (%g to %g BPM)", tempo, minTempo, maxTempo)
	}
	s.tempo = tempo
	return nil
}

// Color returns the scene color index.
func (s *Scene) Color() int { return s.color }

// SetColor sets the scene color index.
func (s *Scene) SetColor(color int) { s.color = color }

// CuePoint is a named position on the arrangement timeline, in beats.
type CuePoint struct {
	Name string
	Time float64
}
