// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"

	"github.com/songbridge/songbridge/dispatch"
	"github.com/songbridge/songbridge/song"
)

func (c *catalog) registerClips(table *dispatch.Table) {
	table.Register("get_clip_info", dispatch.ReadOnly, c.getClipInfo)
	table.Register("get_clip_notes", dispatch.ReadOnly, c.getClipNotes)

	table.Register("create_clip", dispatch.Mutating, c.mutating(c.createClip))
	table.Register("delete_clip", dispatch.Mutating, c.mutating(c.deleteClip))
	table.Register("duplicate_clip", dispatch.Mutating, c.mutating(c.duplicateClip))
	table.Register("set_clip_name", dispatch.Mutating, c.mutating(c.setClipName))
	table.Register("set_clip_color", dispatch.Mutating, c.mutating(c.setClipColor))
	table.Register("fire_clip", dispatch.Mutating, c.mutating(c.fireClip))
	table.Register("stop_clip", dispatch.Mutating, c.mutating(c.stopClip))
	table.Register("set_clip_looping", dispatch.Mutating, c.mutating(c.setClipLooping))
	table.Register("set_clip_loop_points", dispatch.Mutating, c.mutating(c.setClipLoopPoints))
	table.Register("add_notes_to_clip", dispatch.Mutating, c.mutating(c.addNotesToClip))
	table.Register("clear_clip_notes", dispatch.Mutating, c.mutating(c.clearClipNotes))
	table.Register("transpose_clip_notes", dispatch.Mutating, c.mutating(c.transposeClipNotes))
}

func (c *catalog) getClipInfo(ctx context.Context, params dispatch.Params) (any, error) {
	clip, trackIndex, clipIndex, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"track_index":  trackIndex,
		"clip_index":   clipIndex,
		"name":         clip.Name(),
		"length":       clip.Length(),
		"is_playing":   clip.Playing(),
		"is_recording": clip.Recording(),
		"is_midi_clip": clip.IsMIDI(),
		"loop_start":   clip.LoopStart(),
		"loop_end":     clip.LoopEnd(),
		"looping":      clip.Looping(),
		"color_index":  clip.Color(),
		"note_count":   clip.NoteCount(),
	}, nil
}

func (c *catalog) getClipNotes(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	notes := []any{}
	for _, note := range clip.Notes() {
		notes = append(notes, map[string]any{
			"pitch":      note.Pitch,
			"start_time": note.Start,
			"duration":   note.Duration,
			"velocity":   note.Velocity,
			"mute":       note.Mute,
		})
	}
	return map[string]any{"notes": notes, "count": len(notes)}, nil
}

func (c *catalog) createClip(ctx context.Context, params dispatch.Params) (any, error) {
	_, slot, _, _, err := c.resolveSlot(params)
	if err != nil {
		return nil, err
	}
	length, err := params.Float("length", 4.0)
	if err != nil {
		return nil, err
	}
	clip, err := slot.CreateClip(length)
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	clip.SetName(name)
	return map[string]any{"name": clip.Name(), "length": clip.Length()}, nil
}

func (c *catalog) deleteClip(ctx context.Context, params dispatch.Params) (any, error) {
	_, slot, trackIndex, clipIndex, err := c.resolveSlot(params)
	if err != nil {
		return nil, err
	}
	if !slot.HasClip() {
		return nil, fmt.Errorf("no clip in slot")
	}
	name := slot.Clip().Name()
	if err := slot.DeleteClip(); err != nil {
		return nil, err
	}
	return map[string]any{
		"deleted":     true,
		"clip_name":   name,
		"track_index": trackIndex,
		"clip_index":  clipIndex,
	}, nil
}

// duplicateClip copies a clip into another slot, on the same track by
// default into the slot right below.
func (c *catalog) duplicateClip(ctx context.Context, params dispatch.Params) (any, error) {
	clip, trackIndex, clipIndex, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	targetTrackIndex, err := params.Int("target_track_index", trackIndex)
	if err != nil {
		return nil, err
	}
	targetClipIndex, err := params.Int("target_clip_index", clipIndex+1)
	if err != nil {
		return nil, err
	}
	targetTrack, err := c.song.Track(targetTrackIndex)
	if err != nil {
		return nil, err
	}
	targetSlot, err := targetTrack.Slot(targetClipIndex)
	if err != nil {
		return nil, err
	}
	if targetSlot.HasClip() {
		return nil, fmt.Errorf("clip slot already has a clip")
	}
	duplicate, err := targetSlot.CreateClip(clip.Length())
	if err != nil {
		return nil, err
	}
	duplicate.SetName(clip.Name())
	duplicate.SetColor(clip.Color())
	duplicate.SetLooping(clip.Looping())
	if err := duplicate.SetLoopPoints(clip.LoopStart(), clip.LoopEnd()); err != nil {
		return nil, err
	}
	if err := duplicate.AddNotes(clip.Notes()); err != nil {
		return nil, err
	}
	return map[string]any{
		"duplicated":         true,
		"source_track_index": trackIndex,
		"source_clip_index":  clipIndex,
		"target_track_index": targetTrackIndex,
		"target_clip_index":  targetClipIndex,
		"name":               duplicate.Name(),
	}, nil
}

func (c *catalog) setClipName(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	clip.SetName(name)
	return map[string]any{"name": clip.Name()}, nil
}

func (c *catalog) setClipColor(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	color, err := params.Int("color_index", 0)
	if err != nil {
		return nil, err
	}
	clip.SetColor(color)
	return map[string]any{"color_index": color}, nil
}

func (c *catalog) fireClip(ctx context.Context, params dispatch.Params) (any, error) {
	track, _, _, clipIndex, err := c.resolveSlot(params)
	if err != nil {
		return nil, err
	}
	if err := track.FireSlot(clipIndex); err != nil {
		return nil, err
	}
	return map[string]any{"fired": true}, nil
}

func (c *catalog) stopClip(ctx context.Context, params dispatch.Params) (any, error) {
	track, _, _, clipIndex, err := c.resolveSlot(params)
	if err != nil {
		return nil, err
	}
	if err := track.StopSlot(clipIndex); err != nil {
		return nil, err
	}
	return map[string]any{"stopped": true}, nil
}

func (c *catalog) setClipLooping(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	looping, err := params.Bool("looping", true)
	if err != nil {
		return nil, err
	}
	clip.SetLooping(looping)
	return map[string]any{"looping": looping}, nil
}

func (c *catalog) setClipLoopPoints(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	start, err := params.Float("loop_start", 0.0)
	if err != nil {
		return nil, err
	}
	end, err := params.Float("loop_end", clip.Length())
	if err != nil {
		return nil, err
	}
	if err := clip.SetLoopPoints(start, end); err != nil {
		return nil, err
	}
	return map[string]any{"loop_start": start, "loop_end": end}, nil
}

func (c *catalog) addNotesToClip(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	list, err := params.List("notes")
	if err != nil {
		return nil, err
	}
	notes := make([]song.Note, 0, len(list))
	for i, entry := range list {
		object, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("note %d: expected an object, got %T", i, entry)
		}
		note, err := parseNote(dispatch.Params(object))
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		notes = append(notes, note)
	}
	if err := clip.AddNotes(notes); err != nil {
		return nil, err
	}
	return map[string]any{"note_count": len(notes)}, nil
}

// parseNote applies the per-field note defaults: middle C, start of
// clip, a sixteenth at 120 BPM, full-ish velocity.
func parseNote(object dispatch.Params) (song.Note, error) {
	pitch, err := object.Int("pitch", 60)
	if err != nil {
		return song.Note{}, err
	}
	start, err := object.Float("start_time", 0.0)
	if err != nil {
		return song.Note{}, err
	}
	duration, err := object.Float("duration", 0.25)
	if err != nil {
		return song.Note{}, err
	}
	velocity, err := object.Int("velocity", 100)
	if err != nil {
		return song.Note{}, err
	}
	mute, err := object.Bool("mute", false)
	if err != nil {
		return song.Note{}, err
	}
	return song.Note{
		Pitch:    pitch,
		Start:    start,
		Duration: duration,
		Velocity: velocity,
		Mute:     mute,
	}, nil
}

func (c *catalog) clearClipNotes(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	if err := clip.ClearNotes(); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": true}, nil
}

func (c *catalog) transposeClipNotes(ctx context.Context, params dispatch.Params) (any, error) {
	clip, _, _, err := c.resolveClip(params)
	if err != nil {
		return nil, err
	}
	semitones, err := params.Int("semitones", 0)
	if err != nil {
		return nil, err
	}
	if err := clip.TransposeNotes(semitones); err != nil {
		return nil, err
	}
	return map[string]any{"transposed": true, "semitones": semitones}, nil
}
