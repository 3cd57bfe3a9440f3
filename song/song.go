// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import (
	"fmt"
	"sort"
)

const (
	defaultTempo  = 120.0
	defaultVolume = 0.85
	minTempo      = 20.0
	maxTempo      = 999.0

	// maxUndoDepth bounds the undo history. Oldest snapshots fall
	// off first.
	maxUndoDepth = 100
)

// Song is the root of the object graph. It is not safe for concurrent
// use: all access must happen on the main loop.
type Song struct {
	tempo              float64
	signatureNumerator int
	signatureDenom     int

	playing            bool
	currentTime        float64
	metronome          bool
	recordMode         bool
	sessionRecord      bool
	arrangementOverdub bool

	loopStart   float64
	loopLength  float64
	loopEnabled bool

	tracks  []*Track
	returns []*Track
	master  *Track
	scenes  []*Scene
	cues    []CuePoint

	undoStack []*State
	redoStack []*State
}

// New returns an empty song with the application defaults: 120 BPM,
// 4/4 time, a master track at 0.85 volume, no tracks and no scenes.
func New() *Song {
	return &Song{
		tempo:              defaultTempo,
		signatureNumerator: 4,
		signatureDenom:     4,
		loopLength:         4.0,
		master:             newTrack(KindMaster, "Master", 0, 0),
	}
}

// Tempo returns the song tempo in BPM.
func (s *Song) Tempo() float64 { return s.tempo }

// SetTempo sets the song tempo. The application accepts 20 to 999 BPM.
func (s *Song) SetTempo(tempo float64) error {
	if tempo < minTempo || tempo > maxTempo {
		return fmt.Errorf("tempo %g out of range (%g to %g BPM)", tempo, minTempo, maxTempo)
	}
	s.tempo = tempo
	return nil
}

// Signature returns the time signature as numerator and denominator.
func (s *Song) Signature() (int, int) { return s.signatureNumerator, s.signatureDenom }

// SetSignature sets the time signature.
func (s *Song) SetSignature(numerator, denominator int) error {
	if numerator < 1 || numerator > 99 {
		return fmt.Errorf("signature numerator %d out of range (1 to 99)", numerator)
	}
	switch denominator {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("signature denominator %d must be 1, 2, 4, 8 or 16", denominator)
	}
	s.signatureNumerator = numerator
	s.signatureDenom = denominator
	return nil
}

// Playing reports whether the transport is running.
func (s *Song) Playing() bool { return s.playing }

// StartPlayback starts the transport from the beginning.
func (s *Song) StartPlayback() {
	s.currentTime = 0
	s.playing = true
}

// ContinuePlayback resumes the transport from the current position.
func (s *Song) ContinuePlayback() { s.playing = true }

// StopPlayback stops the transport and all session clips.
func (s *Song) StopPlayback() {
	s.playing = false
	for _, track := range s.tracks {
		track.StopAllClips()
	}
}

// CurrentTime returns the playhead position in beats.
func (s *Song) CurrentTime() float64 { return s.currentTime }

// SetCurrentTime moves the playhead.
func (s *Song) SetCurrentTime(time float64) error {
	if time < 0 {
		return fmt.Errorf("song time must be non-negative, got %g", time)
	}
	s.currentTime = time
	return nil
}

// Metronome reports whether the metronome is on.
func (s *Song) Metronome() bool { return s.metronome }

// SetMetronome turns the metronome on or off.
func (s *Song) SetMetronome(on bool) { s.metronome = on }

// RecordMode reports whether arrangement record is engaged.
func (s *Song) RecordMode() bool { return s.recordMode }

// SetRecordMode engages or releases arrangement record.
func (s *Song) SetRecordMode(on bool) { s.recordMode = on }

// SessionRecord reports whether session record is engaged.
func (s *Song) SessionRecord() bool { return s.sessionRecord }

// SetSessionRecord engages or releases session record.
func (s *Song) SetSessionRecord(on bool) { s.sessionRecord = on }

// ArrangementOverdub reports whether arrangement overdub is on.
func (s *Song) ArrangementOverdub() bool { return s.arrangementOverdub }

// SetArrangementOverdub turns arrangement overdub on or off.
func (s *Song) SetArrangementOverdub(on bool) { s.arrangementOverdub = on }

// Loop returns start, length and enabled state of the arrangement
// loop bracket, in beats.
func (s *Song) Loop() (start, length float64, enabled bool) {
	return s.loopStart, s.loopLength, s.loopEnabled
}

// SetLoopEnabled turns the arrangement loop on or off.
func (s *Song) SetLoopEnabled(enabled bool) { s.loopEnabled = enabled }

// SetLoopStart moves the loop start, keeping the current length.
func (s *Song) SetLoopStart(start float64) error {
	if start < 0 {
		return fmt.Errorf("loop start must be non-negative, got %g", start)
	}
	s.loopStart = start
	return nil
}

// SetLoopLength sets the loop length in beats.
func (s *Song) SetLoopLength(length float64) error {
	if length <= 0 {
		return fmt.Errorf("loop length must be positive, got %g", length)
	}
	s.loopLength = length
	return nil
}

// SetLoopEnd moves the loop end, adjusting the length. The end must
// stay after the start.
func (s *Song) SetLoopEnd(end float64) error {
	if end <= s.loopStart {
		return fmt.Errorf("loop end (%g) must be greater than loop start (%g)", end, s.loopStart)
	}
	s.loopLength = end - s.loopStart
	return nil
}

// Tracks

// TrackCount returns the number of regular tracks.
func (s *Song) TrackCount() int { return len(s.tracks) }

// Track returns the regular track at the given index.
func (s *Song) Track(index int) (*Track, error) {
	if index < 0 || index >= len(s.tracks) {
		return nil, fmt.Errorf("track index out of range")
	}
	return s.tracks[index], nil
}

// Tracks returns the regular tracks in order.
func (s *Song) Tracks() []*Track { return s.tracks }

// ReturnCount returns the number of return tracks.
func (s *Song) ReturnCount() int { return len(s.returns) }

// Return returns the return track at the given index.
func (s *Song) Return(index int) (*Track, error) {
	if index < 0 || index >= len(s.returns) {
		return nil, fmt.Errorf("return track index out of range")
	}
	return s.returns[index], nil
}

// Returns returns the return tracks in order.
func (s *Song) Returns() []*Track { return s.returns }

// Master returns the master track.
func (s *Song) Master() *Track { return s.master }

// CreateMIDITrack inserts a new MIDI track at the given index, or
// appends it when index is -1.
func (s *Song) CreateMIDITrack(index int) (*Track, int, error) {
	return s.insertTrack(KindMIDI, index)
}

// CreateAudioTrack inserts a new audio track at the given index, or
// appends it when index is -1.
func (s *Song) CreateAudioTrack(index int) (*Track, int, error) {
	return s.insertTrack(KindAudio, index)
}

func (s *Song) insertTrack(kind TrackKind, index int) (*Track, int, error) {
	if index == -1 {
		index = len(s.tracks)
	}
	if index < 0 || index > len(s.tracks) {
		return nil, 0, fmt.Errorf("track index out of range")
	}
	label := "MIDI"
	if kind == KindAudio {
		label = "Audio"
	}
	name := fmt.Sprintf("%d %s", len(s.tracks)+1, label)
	track := newTrack(kind, name, len(s.scenes), len(s.returns))
	s.tracks = append(s.tracks, nil)
	copy(s.tracks[index+1:], s.tracks[index:])
	s.tracks[index] = track
	return track, index, nil
}

// CreateReturnTrack appends a new return track. Every regular track
// gains a send toward it at level zero.
func (s *Song) CreateReturnTrack() (*Track, int) {
	name := fmt.Sprintf("%c Return", byte('A'+len(s.returns)%26))
	track := newTrack(KindReturn, name, 0, 0)
	s.returns = append(s.returns, track)
	for _, t := range s.tracks {
		t.sends = append(t.sends, 0)
	}
	return track, len(s.returns) - 1
}

// DeleteTrack removes the regular track at the given index.
func (s *Song) DeleteTrack(index int) (*Track, error) {
	track, err := s.Track(index)
	if err != nil {
		return nil, err
	}
	s.tracks = append(s.tracks[:index], s.tracks[index+1:]...)
	return track, nil
}

// DuplicateTrack deep-copies the track at the given index, inserting
// the copy right after the source.
func (s *Song) DuplicateTrack(index int) (*Track, int, error) {
	source, err := s.Track(index)
	if err != nil {
		return nil, 0, err
	}
	duplicate := source.clone()
	duplicate.armed = false
	newIndex := index + 1
	s.tracks = append(s.tracks, nil)
	copy(s.tracks[newIndex+1:], s.tracks[newIndex:])
	s.tracks[newIndex] = duplicate
	return duplicate, newIndex, nil
}

// Scenes

// SceneCount returns the number of scenes.
func (s *Song) SceneCount() int { return len(s.scenes) }

// Scene returns the scene at the given index.
func (s *Song) Scene(index int) (*Scene, error) {
	if index < 0 || index >= len(s.scenes) {
		return nil, fmt.Errorf("scene index out of range")
	}
	return s.scenes[index], nil
}

// Scenes returns the scenes in order.
func (s *Song) Scenes() []*Scene { return s.scenes }

// CreateScene inserts a new scene at the given index, or appends it
// when index is -1. Every regular track gains a clip slot in the new
// row.
func (s *Song) CreateScene(index int) (*Scene, int, error) {
	if index == -1 {
		index = len(s.scenes)
	}
	if index < 0 || index > len(s.scenes) {
		return nil, 0, fmt.Errorf("scene index out of range")
	}
	scene := &Scene{name: fmt.Sprintf("Scene %d", len(s.scenes)+1)}
	s.scenes = append(s.scenes, nil)
	copy(s.scenes[index+1:], s.scenes[index:])
	s.scenes[index] = scene
	for _, track := range s.tracks {
		track.slots = append(track.slots, nil)
		copy(track.slots[index+1:], track.slots[index:])
		track.slots[index] = &ClipSlot{}
	}
	return scene, index, nil
}

// DuplicateScene deep-copies the scene at the given index along with
// its row of clips, inserting the copy right after the source.
func (s *Song) DuplicateScene(index int) (*Scene, int, error) {
	source, err := s.Scene(index)
	if err != nil {
		return nil, 0, err
	}
	duplicate := &Scene{name: source.name, tempo: source.tempo, color: source.color}
	newIndex := index + 1
	s.scenes = append(s.scenes, nil)
	copy(s.scenes[newIndex+1:], s.scenes[newIndex:])
	s.scenes[newIndex] = duplicate
	for _, track := range s.tracks {
		track.slots = append(track.slots, nil)
		copy(track.slots[newIndex+1:], track.slots[newIndex:])
		track.slots[newIndex] = track.slots[index].clone()
	}
	return duplicate, newIndex, nil
}

// DeleteScene removes the scene at the given index along with its row
// of clip slots.
func (s *Song) DeleteScene(index int) (*Scene, error) {
	scene, err := s.Scene(index)
	if err != nil {
		return nil, err
	}
	s.scenes = append(s.scenes[:index], s.scenes[index+1:]...)
	for _, track := range s.tracks {
		track.slots = append(track.slots[:index], track.slots[index+1:]...)
	}
	return scene, nil
}

// FireScene launches the given row: every slot with a clip starts
// playing, every other clip stops. A scene tempo, if set, becomes the
// song tempo.
func (s *Song) FireScene(index int) (int, error) {
	scene, err := s.Scene(index)
	if err != nil {
		return 0, err
	}
	fired := 0
	for _, track := range s.tracks {
		track.StopAllClips()
		if index < len(track.slots) && track.slots[index].clip != nil {
			track.slots[index].clip.playing = true
			fired++
		}
	}
	if scene.tempo > 0 {
		s.tempo = scene.tempo
	}
	s.playing = true
	return fired, nil
}

// StopAllClips stops every playing session clip without stopping the
// transport.
func (s *Song) StopAllClips() {
	for _, track := range s.tracks {
		track.StopAllClips()
	}
}

// Cue points

// CuePoints returns the arrangement cue points sorted by time.
func (s *Song) CuePoints() []CuePoint {
	cues := make([]CuePoint, len(s.cues))
	copy(cues, s.cues)
	return cues
}

// AddCuePoint adds a named cue at the given beat time. Adding a cue
// at an occupied time replaces its name.
func (s *Song) AddCuePoint(name string, time float64) error {
	if time < 0 {
		return fmt.Errorf("cue time must be non-negative, got %g", time)
	}
	for i := range s.cues {
		if s.cues[i].Time == time {
			s.cues[i].Name = name
			return nil
		}
	}
	s.cues = append(s.cues, CuePoint{Name: name, Time: time})
	sort.Slice(s.cues, func(i, j int) bool { return s.cues[i].Time < s.cues[j].Time })
	return nil
}

// DeleteCuePoint removes the cue at the given index.
func (s *Song) DeleteCuePoint(index int) (CuePoint, error) {
	if index < 0 || index >= len(s.cues) {
		return CuePoint{}, fmt.Errorf("cue point index out of range")
	}
	cue := s.cues[index]
	s.cues = append(s.cues[:index], s.cues[index+1:]...)
	return cue, nil
}

// JumpToCuePoint moves the playhead to the cue at the given index.
func (s *Song) JumpToCuePoint(index int) (CuePoint, error) {
	if index < 0 || index >= len(s.cues) {
		return CuePoint{}, fmt.Errorf("cue point index out of range")
	}
	s.currentTime = s.cues[index].Time
	return s.cues[index], nil
}

// Undo history

// CaptureUndo pushes the current state onto the undo stack and clears
// the redo stack. Called before every mutating command.
func (s *Song) CaptureUndo() {
	s.PushUndo(s.Snapshot())
}

// PushUndo records a previously captured state as the undo step for a
// completed mutation and clears the redo stack. The history is capped;
// the oldest step falls off first.
func (s *Song) PushUndo(state *State) {
	s.undoStack = append(s.undoStack, state)
	if len(s.undoStack) > maxUndoDepth {
		s.undoStack = s.undoStack[len(s.undoStack)-maxUndoDepth:]
	}
	s.redoStack = nil
}

// CanUndo reports whether an undo step is available.
func (s *Song) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether a redo step is available.
func (s *Song) CanRedo() bool { return len(s.redoStack) > 0 }

// Undo restores the most recent undo snapshot, pushing the current
// state onto the redo stack.
func (s *Song) Undo() error {
	if len(s.undoStack) == 0 {
		return fmt.Errorf("nothing to undo")
	}
	state := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, s.Snapshot())
	s.restore(state)
	return nil
}

// Redo reapplies the most recently undone step.
func (s *Song) Redo() error {
	if len(s.redoStack) == 0 {
		return fmt.Errorf("nothing to redo")
	}
	state := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, s.Snapshot())
	s.restore(state)
	return nil
}
