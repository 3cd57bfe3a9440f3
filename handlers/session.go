// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"

	"github.com/songbridge/songbridge/dispatch"
)

func (c *catalog) registerSession(table *dispatch.Table) {
	table.Register("get_session_info", dispatch.ReadOnly, c.getSessionInfo)
	table.Register("get_song_transport", dispatch.ReadOnly, c.getSongTransport)
	table.Register("get_loop_info", dispatch.ReadOnly, c.getLoopInfo)
	table.Register("get_recording_status", dispatch.ReadOnly, c.getRecordingStatus)
	table.Register("get_cue_points", dispatch.ReadOnly, c.getCuePoints)

	table.Register("set_tempo", dispatch.Mutating, c.mutating(c.setTempo))
	table.Register("start_playback", dispatch.Mutating, c.mutating(c.startPlayback))
	table.Register("stop_playback", dispatch.Mutating, c.mutating(c.stopPlayback))
	table.Register("continue_playing", dispatch.Mutating, c.mutating(c.continuePlaying))
	table.Register("set_song_time", dispatch.Mutating, c.mutating(c.setSongTime))
	table.Register("set_loop_start", dispatch.Mutating, c.mutating(c.setLoopStart))
	table.Register("set_loop_end", dispatch.Mutating, c.mutating(c.setLoopEnd))
	table.Register("set_loop_length", dispatch.Mutating, c.mutating(c.setLoopLength))
	table.Register("set_song_loop", dispatch.Mutating, c.mutating(c.setSongLoop))
	table.Register("set_metronome", dispatch.Mutating, c.mutating(c.setMetronome))
	table.Register("set_or_delete_cue", dispatch.Mutating, c.mutating(c.setOrDeleteCue))
	table.Register("jump_to_cue", dispatch.Mutating, c.mutating(c.jumpToCue))

	// Undo and redo manage the history themselves, so they skip the
	// capture wrapper.
	table.Register("undo", dispatch.Mutating, c.undo)
	table.Register("redo", dispatch.Mutating, c.redo)
}

func (c *catalog) getSessionInfo(ctx context.Context, params dispatch.Params) (any, error) {
	numerator, denominator := c.song.Signature()
	master := c.song.Master()
	return map[string]any{
		"tempo":                 c.song.Tempo(),
		"signature_numerator":   numerator,
		"signature_denominator": denominator,
		"track_count":           c.song.TrackCount(),
		"return_track_count":    c.song.ReturnCount(),
		"scene_count":           c.song.SceneCount(),
		"master_track": map[string]any{
			"name":    master.Name(),
			"volume":  master.Volume(),
			"panning": master.Pan(),
		},
	}, nil
}

func (c *catalog) getSongTransport(ctx context.Context, params dispatch.Params) (any, error) {
	numerator, denominator := c.song.Signature()
	return map[string]any{
		"is_playing":            c.song.Playing(),
		"current_song_time":     c.song.CurrentTime(),
		"tempo":                 c.song.Tempo(),
		"signature_numerator":   numerator,
		"signature_denominator": denominator,
		"metronome":             c.song.Metronome(),
	}, nil
}

func (c *catalog) getLoopInfo(ctx context.Context, params dispatch.Params) (any, error) {
	start, length, enabled := c.song.Loop()
	return map[string]any{
		"loop_start":        start,
		"loop_end":          start + length,
		"loop_length":       length,
		"loop":              enabled,
		"current_song_time": c.song.CurrentTime(),
	}, nil
}

func (c *catalog) getRecordingStatus(ctx context.Context, params dispatch.Params) (any, error) {
	armed := []any{}
	for i, track := range c.song.Tracks() {
		if track.Armed() {
			armed = append(armed, map[string]any{"index": i, "name": track.Name()})
		}
	}
	return map[string]any{
		"record_mode":         c.song.RecordMode(),
		"arrangement_overdub": c.song.ArrangementOverdub(),
		"session_record":      c.song.SessionRecord(),
		"is_playing":          c.song.Playing(),
		"armed_tracks":        armed,
		"armed_track_count":   len(armed),
	}, nil
}

func (c *catalog) getCuePoints(ctx context.Context, params dispatch.Params) (any, error) {
	cues := []any{}
	for i, cue := range c.song.CuePoints() {
		cues = append(cues, map[string]any{
			"index": i,
			"name":  cue.Name,
			"time":  cue.Time,
		})
	}
	return map[string]any{"cue_points": cues, "count": len(cues)}, nil
}

func (c *catalog) setTempo(ctx context.Context, params dispatch.Params) (any, error) {
	tempo, err := params.Float("tempo", 120.0)
	if err != nil {
		return nil, err
	}
	if err := c.song.SetTempo(tempo); err != nil {
		return nil, err
	}
	return map[string]any{"tempo": c.song.Tempo()}, nil
}

func (c *catalog) startPlayback(ctx context.Context, params dispatch.Params) (any, error) {
	c.song.StartPlayback()
	return map[string]any{"playing": true}, nil
}

func (c *catalog) stopPlayback(ctx context.Context, params dispatch.Params) (any, error) {
	c.song.StopPlayback()
	return map[string]any{"playing": false}, nil
}

func (c *catalog) continuePlaying(ctx context.Context, params dispatch.Params) (any, error) {
	c.song.ContinuePlayback()
	return map[string]any{
		"playing":           true,
		"current_song_time": c.song.CurrentTime(),
	}, nil
}

func (c *catalog) setSongTime(ctx context.Context, params dispatch.Params) (any, error) {
	time, err := params.Float("time", 0.0)
	if err != nil {
		return nil, err
	}
	if err := c.song.SetCurrentTime(time); err != nil {
		return nil, err
	}
	return map[string]any{"current_song_time": c.song.CurrentTime()}, nil
}

func (c *catalog) setLoopStart(ctx context.Context, params dispatch.Params) (any, error) {
	start, err := params.Float("loop_start", 0.0)
	if err != nil {
		return nil, err
	}
	if err := c.song.SetLoopStart(start); err != nil {
		return nil, err
	}
	newStart, length, _ := c.song.Loop()
	return map[string]any{"loop_start": newStart, "loop_end": newStart + length}, nil
}

func (c *catalog) setLoopEnd(ctx context.Context, params dispatch.Params) (any, error) {
	end, err := params.Float("loop_end", 4.0)
	if err != nil {
		return nil, err
	}
	if err := c.song.SetLoopEnd(end); err != nil {
		return nil, err
	}
	start, length, _ := c.song.Loop()
	return map[string]any{"loop_end": start + length, "loop_length": length}, nil
}

func (c *catalog) setLoopLength(ctx context.Context, params dispatch.Params) (any, error) {
	length, err := params.Float("loop_length", 4.0)
	if err != nil {
		return nil, err
	}
	if err := c.song.SetLoopLength(length); err != nil {
		return nil, err
	}
	start, newLength, _ := c.song.Loop()
	return map[string]any{"loop_length": newLength, "loop_end": start + newLength}, nil
}

func (c *catalog) setSongLoop(ctx context.Context, params dispatch.Params) (any, error) {
	enabled, err := params.Bool("loop", true)
	if err != nil {
		return nil, err
	}
	c.song.SetLoopEnabled(enabled)
	return map[string]any{"loop": enabled}, nil
}

func (c *catalog) setMetronome(ctx context.Context, params dispatch.Params) (any, error) {
	enabled, err := params.Bool("enabled", true)
	if err != nil {
		return nil, err
	}
	c.song.SetMetronome(enabled)
	return map[string]any{"metronome": enabled}, nil
}

// setOrDeleteCue toggles a cue point at the given time (default: the
// current playhead position): an existing cue there is removed, an
// empty spot gets a new one.
func (c *catalog) setOrDeleteCue(ctx context.Context, params dispatch.Params) (any, error) {
	time, err := params.Float("time", c.song.CurrentTime())
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	for i, cue := range c.song.CuePoints() {
		if cue.Time == time {
			if _, err := c.song.DeleteCuePoint(i); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true, "name": cue.Name, "time": time}, nil
		}
	}
	if name == "" {
		name = fmt.Sprintf("Cue %g", time)
	}
	if err := c.song.AddCuePoint(name, time); err != nil {
		return nil, err
	}
	return map[string]any{"created": true, "name": name, "time": time}, nil
}

func (c *catalog) jumpToCue(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("cue_index", 0)
	if err != nil {
		return nil, err
	}
	cue, err := c.song.JumpToCuePoint(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"name": cue.Name, "time": cue.Time}, nil
}

func (c *catalog) undo(ctx context.Context, params dispatch.Params) (any, error) {
	if err := c.song.Undo(); err != nil {
		return nil, err
	}
	return map[string]any{
		"undone":   true,
		"can_undo": c.song.CanUndo(),
		"can_redo": c.song.CanRedo(),
	}, nil
}

func (c *catalog) redo(ctx context.Context, params dispatch.Params) (any, error) {
	if err := c.song.Redo(); err != nil {
		return nil, err
	}
	return map[string]any{
		"redone":   true,
		"can_undo": c.song.CanUndo(),
		"can_redo": c.song.CanRedo(),
	}, nil
}
