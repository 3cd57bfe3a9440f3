// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

// State is the serializable form of the song graph. The snapshot
// package encodes it with the deterministic CBOR codec; the undo
// history keeps decoded copies in memory.
type State struct {
	Tempo              float64 `cbor:"tempo"`
	SignatureNumerator int     `cbor:"signature_numerator"`
	SignatureDenom     int     `cbor:"signature_denominator"`

	Playing            bool    `cbor:"playing"`
	CurrentTime        float64 `cbor:"current_time"`
	Metronome          bool    `cbor:"metronome"`
	RecordMode         bool    `cbor:"record_mode"`
	SessionRecord      bool    `cbor:"session_record"`
	ArrangementOverdub bool    `cbor:"arrangement_overdub"`

	LoopStart   float64 `cbor:"loop_start"`
	LoopLength  float64 `cbor:"loop_length"`
	LoopEnabled bool    `cbor:"loop_enabled"`

	Tracks  []TrackState `cbor:"tracks"`
	Returns []TrackState `cbor:"returns"`
	Master  TrackState   `cbor:"master"`
	Scenes  []SceneState `cbor:"scenes"`
	Cues    []CueState   `cbor:"cues,omitempty"`
}

// TrackState is the serializable form of a track.
type TrackState struct {
	Kind    int           `cbor:"kind"`
	Name    string        `cbor:"name"`
	Color   int           `cbor:"color"`
	Armed   bool          `cbor:"armed"`
	Muted   bool          `cbor:"muted"`
	Soloed  bool          `cbor:"soloed"`
	Volume  float64       `cbor:"volume"`
	Pan     float64       `cbor:"pan"`
	Sends   []float64     `cbor:"sends,omitempty"`
	Slots   []*ClipState  `cbor:"slots,omitempty"`
	Devices []DeviceState `cbor:"devices,omitempty"`
}

// ClipState is the serializable form of a clip. A nil *ClipState in a
// track's slot list marks an empty slot.
type ClipState struct {
	Name      string      `cbor:"name"`
	MIDI      bool        `cbor:"midi"`
	Length    float64     `cbor:"length"`
	Looping   bool        `cbor:"looping"`
	LoopStart float64     `cbor:"loop_start"`
	LoopEnd   float64     `cbor:"loop_end"`
	Color     int         `cbor:"color"`
	Playing   bool        `cbor:"playing,omitempty"`
	Recording bool        `cbor:"recording,omitempty"`
	Notes     []NoteState `cbor:"notes,omitempty"`
}

// NoteState is the serializable form of a note.
type NoteState struct {
	Pitch    int     `cbor:"pitch"`
	Start    float64 `cbor:"start"`
	Duration float64 `cbor:"duration"`
	Velocity int     `cbor:"velocity"`
	Mute     bool    `cbor:"mute,omitempty"`
}

// SceneState is the serializable form of a scene.
type SceneState struct {
	Name  string  `cbor:"name"`
	Tempo float64 `cbor:"tempo,omitempty"`
	Color int     `cbor:"color,omitempty"`
}

// CueState is the serializable form of a cue point.
type CueState struct {
	Name string  `cbor:"name"`
	Time float64 `cbor:"time"`
}

// Snapshot captures the full song graph. The returned state shares no
// memory with the song.
func (s *Song) Snapshot() *State {
	state := &State{
		Tempo:              s.tempo,
		SignatureNumerator: s.signatureNumerator,
		SignatureDenom:     s.signatureDenom,
		Playing:            s.playing,
		CurrentTime:        s.currentTime,
		Metronome:          s.metronome,
		RecordMode:         s.recordMode,
		SessionRecord:      s.sessionRecord,
		ArrangementOverdub: s.arrangementOverdub,
		LoopStart:          s.loopStart,
		LoopLength:         s.loopLength,
		LoopEnabled:        s.loopEnabled,
		Master:             trackState(s.master),
	}
	for _, track := range s.tracks {
		state.Tracks = append(state.Tracks, trackState(track))
	}
	for _, track := range s.returns {
		state.Returns = append(state.Returns, trackState(track))
	}
	for _, scene := range s.scenes {
		state.Scenes = append(state.Scenes, SceneState{
			Name:  scene.name,
			Tempo: scene.tempo,
			Color: scene.color,
		})
	}
	for _, cue := range s.cues {
		state.Cues = append(state.Cues, CueState{Name: cue.Name, Time: cue.Time})
	}
	return state
}

// Restore replaces the song graph with a previously captured state.
// The undo and redo histories are left untouched.
func (s *Song) Restore(state *State) { s.restore(state) }

func (s *Song) restore(state *State) {
	s.tempo = state.Tempo
	s.signatureNumerator = state.SignatureNumerator
	s.signatureDenom = state.SignatureDenom
	s.playing = state.Playing
	s.currentTime = state.CurrentTime
	s.metronome = state.Metronome
	s.recordMode = state.RecordMode
	s.sessionRecord = state.SessionRecord
	s.arrangementOverdub = state.ArrangementOverdub
	s.loopStart = state.LoopStart
	s.loopLength = state.LoopLength
	s.loopEnabled = state.LoopEnabled
	s.master = trackFromState(state.Master)
	s.tracks = nil
	for _, ts := range state.Tracks {
		s.tracks = append(s.tracks, trackFromState(ts))
	}
	s.returns = nil
	for _, ts := range state.Returns {
		s.returns = append(s.returns, trackFromState(ts))
	}
	s.scenes = nil
	for _, ss := range state.Scenes {
		s.scenes = append(s.scenes, &Scene{name: ss.Name, tempo: ss.Tempo, color: ss.Color})
	}
	s.cues = nil
	for _, cs := range state.Cues {
		s.cues = append(s.cues, CuePoint{Name: cs.Name, Time: cs.Time})
	}
}

func trackState(t *Track) TrackState {
	ts := TrackState{
		Kind:   int(t.kind),
		Name:   t.name,
		Color:  t.color,
		Armed:  t.armed,
		Muted:  t.muted,
		Soloed: t.soloed,
		Volume: t.volume,
		Pan:    t.pan,
	}
	ts.Sends = append(ts.Sends, t.sends...)
	for _, slot := range t.slots {
		ts.Slots = append(ts.Slots, clipState(slot.clip))
	}
	for _, device := range t.devices {
		ds := DeviceState{Name: device.Name, ClassName: device.ClassName, Type: device.Type}
		ds.Parameters = append(ds.Parameters, device.Parameters...)
		ts.Devices = append(ts.Devices, ds)
	}
	return ts
}

// DeviceState is the serializable form of a device.
type DeviceState struct {
	Name       string      `cbor:"name"`
	ClassName  string      `cbor:"class_name"`
	Type       string      `cbor:"type"`
	Parameters []Parameter `cbor:"parameters,omitempty"`
}

func clipState(c *Clip) *ClipState {
	if c == nil {
		return nil
	}
	cs := &ClipState{
		Name:      c.name,
		MIDI:      c.midi,
		Length:    c.length,
		Looping:   c.looping,
		LoopStart: c.loopStart,
		LoopEnd:   c.loopEnd,
		Color:     c.color,
		Playing:   c.playing,
		Recording: c.recording,
	}
	for _, note := range c.notes {
		cs.Notes = append(cs.Notes, NoteState(note))
	}
	return cs
}

func trackFromState(ts TrackState) *Track {
	track := &Track{
		kind:   TrackKind(ts.Kind),
		name:   ts.Name,
		color:  ts.Color,
		armed:  ts.Armed,
		muted:  ts.Muted,
		soloed: ts.Soloed,
		volume: ts.Volume,
		pan:    ts.Pan,
	}
	track.sends = append(track.sends, ts.Sends...)
	if track.sends == nil {
		track.sends = []float64{}
	}
	for _, cs := range ts.Slots {
		track.slots = append(track.slots, &ClipSlot{clip: clipFromState(cs)})
	}
	for _, ds := range ts.Devices {
		device := &Device{Name: ds.Name, ClassName: ds.ClassName, Type: ds.Type}
		device.Parameters = append(device.Parameters, ds.Parameters...)
		track.devices = append(track.devices, device)
	}
	return track
}

func clipFromState(cs *ClipState) *Clip {
	if cs == nil {
		return nil
	}
	clip := &Clip{
		name:      cs.Name,
		midi:      cs.MIDI,
		length:    cs.Length,
		looping:   cs.Looping,
		loopStart: cs.LoopStart,
		loopEnd:   cs.LoopEnd,
		color:     cs.Color,
		playing:   cs.Playing,
		recording: cs.Recording,
	}
	for _, note := range cs.Notes {
		clip.notes = append(clip.notes, Note(note))
	}
	return clip
}
