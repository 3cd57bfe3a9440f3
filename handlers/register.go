// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"

	"github.com/songbridge/songbridge/dispatch"
	"github.com/songbridge/songbridge/song"
)

// catalog binds the command set to one song. Handlers are methods so
// the registration table closes over a single receiver instead of 60
// separate closures over the song pointer.
type catalog struct {
	song *song.Song
}

// Register wires the full command catalog into the table.
func Register(table *dispatch.Table, s *song.Song) {
	c := &catalog{song: s}
	c.registerSession(table)
	c.registerTracks(table)
	c.registerClips(table)
	c.registerMixer(table)
	c.registerScenes(table)
	c.registerDevices(table)
}

// mutating wraps a handler with undo capture: the pre-command state
// becomes the undo step when the handler succeeds, and the song is
// rolled back to it when the handler fails after partial mutation.
func (c *catalog) mutating(fn dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(ctx context.Context, params dispatch.Params) (any, error) {
		before := c.song.Snapshot()
		result, err := fn(ctx, params)
		if err != nil {
			c.song.Restore(before)
			return nil, err
		}
		c.song.PushUndo(before)
		return result, nil
	}
}

// resolveTrack picks the track a command targets. track_type selects
// between regular tracks, return tracks and the master track; the
// index applies to the first two.
func (c *catalog) resolveTrack(params dispatch.Params) (*song.Track, error) {
	trackType, err := params.String("track_type", "track")
	if err != nil {
		return nil, err
	}
	index, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	switch trackType {
	case "track":
		return c.song.Track(index)
	case "return":
		return c.song.Return(index)
	case "master":
		return c.song.Master(), nil
	}
	return nil, fmt.Errorf("unknown track_type %q (want track, return or master)", trackType)
}

// resolveSlot picks the clip slot a command targets.
func (c *catalog) resolveSlot(params dispatch.Params) (*song.Track, *song.ClipSlot, int, int, error) {
	trackIndex, err := params.Int("track_index", 0)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	clipIndex, err := params.Int("clip_index", 0)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	track, err := c.song.Track(trackIndex)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	slot, err := track.Slot(clipIndex)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	return track, slot, trackIndex, clipIndex, nil
}

// resolveClip is resolveSlot plus the requirement that the slot holds
// a clip.
func (c *catalog) resolveClip(params dispatch.Params) (*song.Clip, int, int, error) {
	_, slot, trackIndex, clipIndex, err := c.resolveSlot(params)
	if err != nil {
		return nil, 0, 0, err
	}
	if !slot.HasClip() {
		return nil, 0, 0, fmt.Errorf("no clip in slot")
	}
	return slot.Clip(), trackIndex, clipIndex, nil
}
