// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import (
	"strings"
	"testing"
)

func newTestSong(t *testing.T, trackCount, sceneCount int) *Song {
	t.Helper()
	s := New()
	for i := 0; i < sceneCount; i++ {
		if _, _, err := s.CreateScene(-1); err != nil {
			t.Fatalf("create scene %d: %v", i, err)
		}
	}
	for i := 0; i < trackCount; i++ {
		if _, _, err := s.CreateMIDITrack(-1); err != nil {
			t.Fatalf("create track %d: %v", i, err)
		}
	}
	return s
}

func TestNewDefaults(t *testing.T) {
	s := New()
	if s.Tempo() != 120.0 {
		t.Fatalf("default tempo: got %g, want 120", s.Tempo())
	}
	num, denom := s.Signature()
	if num != 4 || denom != 4 {
		t.Fatalf("default signature: got %d/%d, want 4/4", num, denom)
	}
	if got := s.Master().Volume(); got != 0.85 {
		t.Fatalf("default master volume: got %g, want 0.85", got)
	}
	if s.TrackCount() != 0 || s.SceneCount() != 0 || s.ReturnCount() != 0 {
		t.Fatalf("new song is not empty: %d tracks, %d scenes, %d returns",
			s.TrackCount(), s.SceneCount(), s.ReturnCount())
	}
}

func TestSetTempoRange(t *testing.T) {
	s := New()
	if err := s.SetTempo(128.5); err != nil {
		t.Fatalf("set tempo: %v", err)
	}
	if s.Tempo() != 128.5 {
		t.Fatalf("tempo: got %g, want 128.5", s.Tempo())
	}
	for _, bad := range []float64{0, 19.9, 1000, -10} {
		if err := s.SetTempo(bad); err == nil {
			t.Fatalf("SetTempo(%g) accepted an out-of-range tempo", bad)
		}
	}
	if s.Tempo() != 128.5 {
		t.Fatalf("tempo changed by rejected set: got %g", s.Tempo())
	}
}

func TestTransport(t *testing.T) {
	s := newTestSong(t, 1, 1)
	if err := s.SetCurrentTime(16); err != nil {
		t.Fatalf("set current time: %v", err)
	}
	s.StartPlayback()
	if !s.Playing() || s.CurrentTime() != 0 {
		t.Fatalf("start playback: playing=%v time=%g", s.Playing(), s.CurrentTime())
	}
	s.StopPlayback()
	if s.Playing() {
		t.Fatal("transport still running after stop")
	}
	if err := s.SetCurrentTime(8); err != nil {
		t.Fatalf("set current time: %v", err)
	}
	s.ContinuePlayback()
	if !s.Playing() || s.CurrentTime() != 8 {
		t.Fatalf("continue playback: playing=%v time=%g, want playing at 8", s.Playing(), s.CurrentTime())
	}
	if err := s.SetCurrentTime(-1); err == nil {
		t.Fatal("SetCurrentTime accepted a negative time")
	}
}

func TestStopPlaybackStopsClips(t *testing.T) {
	s := newTestSong(t, 1, 1)
	track, _ := s.Track(0)
	slot, _ := track.Slot(0)
	if _, err := slot.CreateClip(4.0); err != nil {
		t.Fatalf("create clip: %v", err)
	}
	if err := track.FireSlot(0); err != nil {
		t.Fatalf("fire slot: %v", err)
	}
	if !slot.Clip().Playing() {
		t.Fatal("clip not playing after fire")
	}
	s.StopPlayback()
	if slot.Clip().Playing() {
		t.Fatal("clip still playing after transport stop")
	}
}

func TestLoopBracket(t *testing.T) {
	s := New()
	start, length, enabled := s.Loop()
	if start != 0 || length != 4.0 || enabled {
		t.Fatalf("default loop: start=%g length=%g enabled=%v", start, length, enabled)
	}
	if err := s.SetLoopStart(8); err != nil {
		t.Fatalf("set loop start: %v", err)
	}
	if err := s.SetLoopEnd(16); err != nil {
		t.Fatalf("set loop end: %v", err)
	}
	_, length, _ = s.Loop()
	if length != 8 {
		t.Fatalf("loop length after SetLoopEnd: got %g, want 8", length)
	}
	if err := s.SetLoopEnd(8); err == nil {
		t.Fatal("SetLoopEnd accepted end equal to start")
	}
	if err := s.SetLoopLength(0); err == nil {
		t.Fatal("SetLoopLength accepted zero")
	}
	s.SetLoopEnabled(true)
	if _, _, enabled := s.Loop(); !enabled {
		t.Fatal("loop not enabled")
	}
}

func TestCreateAndDeleteTracks(t *testing.T) {
	s := newTestSong(t, 2, 2)
	track, index, err := s.CreateAudioTrack(1)
	if err != nil {
		t.Fatalf("create audio track: %v", err)
	}
	if index != 1 || track.Kind() != KindAudio {
		t.Fatalf("insert: index=%d kind=%v", index, track.Kind())
	}
	if track.SlotCount() != 2 {
		t.Fatalf("new track slot count: got %d, want 2", track.SlotCount())
	}
	if s.TrackCount() != 3 {
		t.Fatalf("track count: got %d, want 3", s.TrackCount())
	}

	deleted, err := s.DeleteTrack(1)
	if err != nil {
		t.Fatalf("delete track: %v", err)
	}
	if deleted != track {
		t.Fatal("DeleteTrack removed the wrong track")
	}
	if _, err := s.Track(2); err == nil {
		t.Fatal("stale index still resolves after delete")
	}
	if _, _, err := s.CreateMIDITrack(99); err == nil {
		t.Fatal("CreateMIDITrack accepted an out-of-range index")
	}
}

func TestDuplicateTrackDeepCopies(t *testing.T) {
	s := newTestSong(t, 1, 1)
	source, _ := s.Track(0)
	source.SetName("Drums")
	slot, _ := source.Slot(0)
	clip, _ := slot.CreateClip(4.0)
	if err := clip.AddNotes([]Note{{Pitch: 36, Duration: 0.25, Velocity: 100}}); err != nil {
		t.Fatalf("add notes: %v", err)
	}

	duplicate, newIndex, err := s.DuplicateTrack(0)
	if err != nil {
		t.Fatalf("duplicate track: %v", err)
	}
	if newIndex != 1 || duplicate.Name() != "Drums" {
		t.Fatalf("duplicate: index=%d name=%q", newIndex, duplicate.Name())
	}

	dupSlot, _ := duplicate.Slot(0)
	if !dupSlot.HasClip() || dupSlot.Clip().NoteCount() != 1 {
		t.Fatal("duplicate did not copy the clip contents")
	}
	if err := clip.AddNotes([]Note{{Pitch: 38, Duration: 0.25, Velocity: 100}}); err != nil {
		t.Fatalf("add notes: %v", err)
	}
	if dupSlot.Clip().NoteCount() != 1 {
		t.Fatal("duplicate shares note storage with the source")
	}
}

func TestReturnTracksGrowSends(t *testing.T) {
	s := newTestSong(t, 2, 0)
	ret, index := s.CreateReturnTrack()
	if index != 0 || !strings.HasPrefix(ret.Name(), "A") {
		t.Fatalf("first return: index=%d name=%q", index, ret.Name())
	}
	track, _ := s.Track(0)
	if got := len(track.Sends()); got != 1 {
		t.Fatalf("sends after return creation: got %d, want 1", got)
	}
	if err := track.SetSend(0, 0.5); err != nil {
		t.Fatalf("set send: %v", err)
	}
	if level, _ := track.Send(0); level != 0.5 {
		t.Fatalf("send level: got %g, want 0.5", level)
	}
	if err := track.SetSend(1, 0.5); err == nil {
		t.Fatal("SetSend accepted an out-of-range index")
	}
}

func TestMixerClamps(t *testing.T) {
	s := newTestSong(t, 1, 0)
	track, _ := s.Track(0)
	track.SetVolume(1.5)
	if track.Volume() != 1.0 {
		t.Fatalf("volume clamp: got %g, want 1", track.Volume())
	}
	track.SetPan(-2)
	if track.Pan() != -1.0 {
		t.Fatalf("pan clamp: got %g, want -1", track.Pan())
	}
	if err := s.Master().SetArmed(true); err == nil {
		t.Fatal("master track accepted arming")
	}
}

func TestScenesAndFiring(t *testing.T) {
	s := newTestSong(t, 2, 2)
	trackA, _ := s.Track(0)
	trackB, _ := s.Track(1)
	slotA0, _ := trackA.Slot(0)
	slotB1, _ := trackB.Slot(1)
	if _, err := slotA0.CreateClip(4.0); err != nil {
		t.Fatalf("create clip: %v", err)
	}
	if _, err := slotB1.CreateClip(4.0); err != nil {
		t.Fatalf("create clip: %v", err)
	}

	scene, _ := s.Scene(0)
	if err := scene.SetTempo(90); err != nil {
		t.Fatalf("set scene tempo: %v", err)
	}
	if err := scene.SetTempo(5000); err == nil {
		t.Fatal("SetTempo(5000) accepted an out-of-range scene tempo")
	}

	fired, err := s.FireScene(0)
	if err != nil {
		t.Fatalf("fire scene: %v", err)
	}
	if fired != 1 {
		t.Fatalf("fired clip count: got %d, want 1", fired)
	}
	if !slotA0.Clip().Playing() || !s.Playing() {
		t.Fatal("scene fire did not start playback")
	}
	if s.Tempo() != 90 {
		t.Fatalf("scene tempo not applied: got %g", s.Tempo())
	}

	if _, err := s.FireScene(1); err != nil {
		t.Fatalf("fire scene 1: %v", err)
	}
	if slotA0.Clip().Playing() {
		t.Fatal("previous row still playing after firing another scene")
	}
	if !slotB1.Clip().Playing() {
		t.Fatal("fired row not playing")
	}

	if _, err := s.DeleteScene(0); err != nil {
		t.Fatalf("delete scene: %v", err)
	}
	if trackA.SlotCount() != 1 {
		t.Fatalf("slot row not removed with scene: %d slots", trackA.SlotCount())
	}
	if _, err := s.FireScene(5); err == nil {
		t.Fatal("FireScene accepted an out-of-range index")
	}
}

func TestClipLifecycle(t *testing.T) {
	s := newTestSong(t, 1, 1)
	track, _ := s.Track(0)
	slot, _ := track.Slot(0)

	if err := track.FireSlot(0); err == nil {
		t.Fatal("fired an empty slot")
	}
	clip, err := slot.CreateClip(4.0)
	if err != nil {
		t.Fatalf("create clip: %v", err)
	}
	if _, err := slot.CreateClip(4.0); err == nil {
		t.Fatal("created a clip in an occupied slot")
	}
	if clip.Length() != 4.0 || !clip.Looping() || clip.LoopEnd() != 4.0 {
		t.Fatalf("new clip defaults: length=%g looping=%v loopEnd=%g",
			clip.Length(), clip.Looping(), clip.LoopEnd())
	}

	err = clip.AddNotes([]Note{
		{Pitch: 200, Start: -1, Duration: 0, Velocity: 300},
		{Pitch: -5, Start: 2, Duration: 0.5, Velocity: 0},
	})
	if err != nil {
		t.Fatalf("add notes: %v", err)
	}
	notes := clip.Notes()
	if notes[0].Pitch != 127 || notes[0].Start != 0 || notes[0].Duration != 0.01 || notes[0].Velocity != 127 {
		t.Fatalf("note 0 not clamped: %+v", notes[0])
	}
	if notes[1].Pitch != 0 || notes[1].Velocity != 1 {
		t.Fatalf("note 1 not clamped: %+v", notes[1])
	}

	if err := clip.TransposeNotes(12); err != nil {
		t.Fatalf("transpose: %v", err)
	}
	if got := clip.Notes()[1].Pitch; got != 12 {
		t.Fatalf("transposed pitch: got %d, want 12", got)
	}

	if err := slot.DeleteClip(); err != nil {
		t.Fatalf("delete clip: %v", err)
	}
	if err := slot.DeleteClip(); err == nil {
		t.Fatal("deleted from an empty slot")
	}
}

func TestCuePoints(t *testing.T) {
	s := New()
	if err := s.AddCuePoint("Drop", 32); err != nil {
		t.Fatalf("add cue: %v", err)
	}
	if err := s.AddCuePoint("Intro", 0); err != nil {
		t.Fatalf("add cue: %v", err)
	}
	cues := s.CuePoints()
	if len(cues) != 2 || cues[0].Name != "Intro" || cues[1].Name != "Drop" {
		t.Fatalf("cues not sorted by time: %+v", cues)
	}

	// Same time replaces the name instead of stacking cues.
	if err := s.AddCuePoint("Breakdown", 32); err != nil {
		t.Fatalf("add cue: %v", err)
	}
	if cues := s.CuePoints(); len(cues) != 2 || cues[1].Name != "Breakdown" {
		t.Fatalf("cue at occupied time not replaced: %+v", cues)
	}

	cue, err := s.JumpToCuePoint(1)
	if err != nil {
		t.Fatalf("jump to cue: %v", err)
	}
	if cue.Name != "Breakdown" || s.CurrentTime() != 32 {
		t.Fatalf("jump: cue=%q time=%g", cue.Name, s.CurrentTime())
	}

	if _, err := s.DeleteCuePoint(0); err != nil {
		t.Fatalf("delete cue: %v", err)
	}
	if _, err := s.DeleteCuePoint(5); err == nil {
		t.Fatal("DeleteCuePoint accepted an out-of-range index")
	}
}

func TestUndoRedo(t *testing.T) {
	s := New()
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("fresh song has history")
	}
	if err := s.Undo(); err == nil {
		t.Fatal("undo on empty history succeeded")
	}

	s.CaptureUndo()
	if err := s.SetTempo(140); err != nil {
		t.Fatalf("set tempo: %v", err)
	}
	s.CaptureUndo()
	if _, _, err := s.CreateMIDITrack(-1); err != nil {
		t.Fatalf("create track: %v", err)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.TrackCount() != 0 || s.Tempo() != 140 {
		t.Fatalf("first undo: tracks=%d tempo=%g", s.TrackCount(), s.Tempo())
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.Tempo() != 120 {
		t.Fatalf("second undo: tempo=%g, want 120", s.Tempo())
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if s.Tempo() != 140 {
		t.Fatalf("redo: tempo=%g, want 140", s.Tempo())
	}
	if err := s.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if s.TrackCount() != 1 {
		t.Fatalf("redo: tracks=%d, want 1", s.TrackCount())
	}

	// A new capture clears the redo side.
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	s.CaptureUndo()
	if s.CanRedo() {
		t.Fatal("redo stack survived a new capture")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSong(t, 2, 2)
	if err := s.SetTempo(98); err != nil {
		t.Fatalf("set tempo: %v", err)
	}
	track, _ := s.Track(0)
	track.SetName("Bass")
	track.SetColor(12)
	slot, _ := track.Slot(1)
	clip, _ := slot.CreateClip(8.0)
	clip.SetName("Bassline")
	if err := clip.AddNotes([]Note{{Pitch: 40, Start: 0, Duration: 1, Velocity: 90}}); err != nil {
		t.Fatalf("add notes: %v", err)
	}
	s.CreateReturnTrack()
	if err := track.SetSend(0, 0.3); err != nil {
		t.Fatalf("set send: %v", err)
	}
	track.AddDevice(&Device{
		Name:      "Filter",
		ClassName: "AutoFilter",
		Type:      "audio_effect",
		Parameters: []Parameter{
			{Name: "Frequency", Value: 0.7, Min: 0, Max: 1},
		},
	})
	if err := s.AddCuePoint("Verse", 16); err != nil {
		t.Fatalf("add cue: %v", err)
	}

	state := s.Snapshot()
	restored := New()
	restored.Restore(state)

	if restored.Tempo() != 98 || restored.TrackCount() != 2 || restored.SceneCount() != 2 {
		t.Fatalf("restored shape: tempo=%g tracks=%d scenes=%d",
			restored.Tempo(), restored.TrackCount(), restored.SceneCount())
	}
	rTrack, _ := restored.Track(0)
	if rTrack.Name() != "Bass" || rTrack.Color() != 12 {
		t.Fatalf("restored track: name=%q color=%d", rTrack.Name(), rTrack.Color())
	}
	if level, _ := rTrack.Send(0); level != 0.3 {
		t.Fatalf("restored send: got %g, want 0.3", level)
	}
	rSlot, _ := rTrack.Slot(1)
	if !rSlot.HasClip() || rSlot.Clip().Name() != "Bassline" || rSlot.Clip().NoteCount() != 1 {
		t.Fatal("restored clip missing or incomplete")
	}
	devices := rTrack.Devices()
	if len(devices) != 1 || devices[0].Parameters[0].Name != "Frequency" {
		t.Fatal("restored device chain incomplete")
	}
	cues := restored.CuePoints()
	if len(cues) != 1 || cues[0].Name != "Verse" {
		t.Fatalf("restored cues: %+v", cues)
	}

	// Snapshot must not alias live state.
	track.SetName("Renamed")
	if state.Tracks[0].Name != "Bass" {
		t.Fatal("snapshot aliases the live track")
	}
}

func TestSnapshotPreservesClipPlayback(t *testing.T) {
	s := newTestSong(t, 1, 1)
	track, _ := s.Track(0)
	slot, _ := track.Slot(0)
	clip, _ := slot.CreateClip(4.0)
	if err := track.FireSlot(0); err != nil {
		t.Fatalf("fire slot: %v", err)
	}
	clip.recording = true

	state := s.Snapshot()
	if err := track.StopSlot(0); err != nil {
		t.Fatalf("stop slot: %v", err)
	}
	clip.recording = false

	s.Restore(state)
	track, _ = s.Track(0)
	if track.PlayingSlot() != 0 {
		t.Fatalf("restore lost the playing clip: PlayingSlot=%d", track.PlayingSlot())
	}
	restoredSlot, _ := track.Slot(0)
	if !restoredSlot.Clip().Recording() {
		t.Fatal("restore lost the recording flag")
	}
}
