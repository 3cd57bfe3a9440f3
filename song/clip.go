// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import "fmt"

// Note is one MIDI note within a clip. Times are in beats.
type Note struct {
	Pitch    int
	Start    float64
	Duration float64
	Velocity int
	Mute     bool
}

// Clip is one session clip. MIDI clips hold notes; audio clips do not.
type Clip struct {
	name      string
	midi      bool
	length    float64
	looping   bool
	loopStart float64
	loopEnd   float64
	color     int
	playing   bool
	recording bool
	notes     []Note
}

func newMIDIClip(length float64) *Clip {
	return &Clip{
		midi:    true,
		length:  length,
		looping: true,
		loopEnd: length,
	}
}

// Name returns the clip name.
func (c *Clip) Name() string { return c.name }

// SetName renames the clip.
func (c *Clip) SetName(name string) { c.name = name }

// IsMIDI reports whether the clip holds MIDI notes.
func (c *Clip) IsMIDI() bool { return c.midi }

// Length returns the clip length in beats.
func (c *Clip) Length() float64 { return c.length }

// Color returns the clip color index.
func (c *Clip) Color() int { return c.color }

// SetColor sets the clip color index.
func (c *Clip) SetColor(color int) { c.color = color }

// Playing reports whether the clip is currently playing.
func (c *Clip) Playing() bool { return c.playing }

// Recording reports whether the clip is currently recording.
func (c *Clip) Recording() bool { return c.recording }

// Looping reports whether clip looping is enabled.
func (c *Clip) Looping() bool { return c.looping }

// SetLooping enables or disables clip looping.
func (c *Clip) SetLooping(looping bool) { c.looping = looping }

// LoopStart returns the loop start in beats.
func (c *Clip) LoopStart() float64 { return c.loopStart }

// LoopEnd returns the loop end in beats.
func (c *Clip) LoopEnd() float64 { return c.loopEnd }

// SetLoopPoints sets the loop bracket. End must be after start.
func (c *Clip) SetLoopPoints(start, end float64) error {
	if start < 0 {
		return fmt.Errorf("loop start must be non-negative, got %g", start)
	}
	if end <= start {
		return fmt.Errorf("loop end (%g) must be greater than loop start (%g)", end, start)
	}
	c.loopStart = start
	c.loopEnd = end
	return nil
}

// AddNotes appends notes to a MIDI clip, clamping each to valid MIDI
// ranges the way the live application does: pitch 0-127, velocity
// 1-127, non-negative start, minimum duration 0.01 beats.
func (c *Clip) AddNotes(notes []Note) error {
	if !c.midi {
		return fmt.Errorf("clip %q is not a MIDI clip", c.name)
	}
	for _, note := range notes {
		c.notes = append(c.notes, Note{
			Pitch:    clampInt(note.Pitch, 0, 127),
			Start:    max(0.0, note.Start),
			Duration: max(0.01, note.Duration),
			Velocity: clampInt(note.Velocity, 1, 127),
			Mute:     note.Mute,
		})
	}
	return nil
}

// Notes returns a copy of the clip's notes.
func (c *Clip) Notes() []Note {
	notes := make([]Note, len(c.notes))
	copy(notes, c.notes)
	return notes
}

// NoteCount returns the number of notes in the clip.
func (c *Clip) NoteCount() int { return len(c.notes) }

// ClearNotes removes all notes from a MIDI clip.
func (c *Clip) ClearNotes() error {
	if !c.midi {
		return fmt.Errorf("clip %q is not a MIDI clip", c.name)
	}
	c.notes = nil
	return nil
}

// TransposeNotes shifts every note by the given number of semitones,
// clamping to the MIDI pitch range.
func (c *Clip) TransposeNotes(semitones int) error {
	if !c.midi {
		return fmt.Errorf("clip %q is not a MIDI clip", c.name)
	}
	for i := range c.notes {
		c.notes[i].Pitch = clampInt(c.notes[i].Pitch+semitones, 0, 127)
	}
	return nil
}

// clone deep-copies the clip.
func (c *Clip) clone() *Clip {
	duplicate := *c
	duplicate.playing = false
	duplicate.recording = false
	duplicate.notes = make([]Note, len(c.notes))
	copy(duplicate.notes, c.notes)
	return &duplicate
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
