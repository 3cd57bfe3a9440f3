// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/songbridge/songbridge/dispatch"
	"github.com/songbridge/songbridge/song"
)

func (c *catalog) registerTracks(table *dispatch.Table) {
	table.Register("get_track_info", dispatch.ReadOnly, c.getTrackInfo)
	table.Register("get_all_tracks_info", dispatch.ReadOnly, c.getAllTracksInfo)

	table.Register("create_midi_track", dispatch.Mutating, c.mutating(c.createMIDITrack))
	table.Register("create_audio_track", dispatch.Mutating, c.mutating(c.createAudioTrack))
	table.Register("create_return_track", dispatch.Mutating, c.mutating(c.createReturnTrack))
	table.Register("set_track_name", dispatch.Mutating, c.mutating(c.setTrackName))
	table.Register("delete_track", dispatch.Mutating, c.mutating(c.deleteTrack))
	table.Register("duplicate_track", dispatch.Mutating, c.mutating(c.duplicateTrack))
	table.Register("set_track_color", dispatch.Mutating, c.mutating(c.setTrackColor))
	table.Register("arm_track", dispatch.Mutating, c.mutating(c.armTrack))
	table.Register("disarm_track", dispatch.Mutating, c.mutating(c.disarmTrack))
}

func trackSummary(index int, track *song.Track) map[string]any {
	return map[string]any{
		"index":        index,
		"name":         track.Name(),
		"type":         track.Kind().String(),
		"color_index":  track.Color(),
		"muted":        track.Muted(),
		"soloed":       track.Soloed(),
		"armed":        track.Armed(),
		"volume":       track.Volume(),
		"panning":      track.Pan(),
		"playing_slot": track.PlayingSlot(),
	}
}

func (c *catalog) getTrackInfo(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	track, err := c.song.Track(index)
	if err != nil {
		return nil, err
	}

	slots := []any{}
	for i := 0; i < track.SlotCount(); i++ {
		slot, _ := track.Slot(i)
		entry := map[string]any{"index": i, "has_clip": slot.HasClip()}
		if slot.HasClip() {
			clip := slot.Clip()
			entry["clip"] = map[string]any{
				"name":         clip.Name(),
				"length":       clip.Length(),
				"is_playing":   clip.Playing(),
				"is_recording": clip.Recording(),
			}
		}
		slots = append(slots, entry)
	}

	devices := []any{}
	for i, device := range track.Devices() {
		devices = append(devices, map[string]any{
			"index":      i,
			"name":       device.Name,
			"class_name": device.ClassName,
			"type":       device.Type,
		})
	}

	info := trackSummary(index, track)
	info["clip_slots"] = slots
	info["devices"] = devices
	info["sends"] = track.Sends()
	return info, nil
}

func (c *catalog) getAllTracksInfo(ctx context.Context, params dispatch.Params) (any, error) {
	tracks := []any{}
	for i, track := range c.song.Tracks() {
		tracks = append(tracks, trackSummary(i, track))
	}
	return map[string]any{"tracks": tracks, "count": len(tracks)}, nil
}

func (c *catalog) createMIDITrack(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("index", -1)
	if err != nil {
		return nil, err
	}
	track, newIndex, err := c.song.CreateMIDITrack(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"index": newIndex, "name": track.Name()}, nil
}

func (c *catalog) createAudioTrack(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("index", -1)
	if err != nil {
		return nil, err
	}
	track, newIndex, err := c.song.CreateAudioTrack(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"index": newIndex, "name": track.Name()}, nil
}

func (c *catalog) createReturnTrack(ctx context.Context, params dispatch.Params) (any, error) {
	track, index := c.song.CreateReturnTrack()
	return map[string]any{"index": index, "name": track.Name()}, nil
}

func (c *catalog) setTrackName(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	track, err := c.song.Track(index)
	if err != nil {
		return nil, err
	}
	track.SetName(name)
	return map[string]any{"track_index": index, "name": track.Name()}, nil
}

func (c *catalog) deleteTrack(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	track, err := c.song.DeleteTrack(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"deleted":     true,
		"track_name":  track.Name(),
		"track_index": index,
	}, nil
}

func (c *catalog) duplicateTrack(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	source, err := c.song.Track(index)
	if err != nil {
		return nil, err
	}
	duplicate, newIndex, err := c.song.DuplicateTrack(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"duplicated":   true,
		"source_index": index,
		"source_name":  source.Name(),
		"new_index":    newIndex,
		"new_name":     duplicate.Name(),
	}, nil
}

func (c *catalog) setTrackColor(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	color, err := params.Int("color_index", 0)
	if err != nil {
		return nil, err
	}
	track, err := c.song.Track(index)
	if err != nil {
		return nil, err
	}
	track.SetColor(color)
	return map[string]any{"track_index": index, "color_index": color}, nil
}

func (c *catalog) armTrack(ctx context.Context, params dispatch.Params) (any, error) {
	return c.setArmed(params, true)
}

func (c *catalog) disarmTrack(ctx context.Context, params dispatch.Params) (any, error) {
	return c.setArmed(params, false)
}

func (c *catalog) setArmed(params dispatch.Params, armed bool) (any, error) {
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	track, err := c.song.Track(index)
	if err != nil {
		return nil, err
	}
	if err := track.SetArmed(armed); err != nil {
		return nil, err
	}
	return map[string]any{"track_index": index, "armed": armed}, nil
}
