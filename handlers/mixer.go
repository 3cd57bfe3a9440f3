// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/songbridge/songbridge/dispatch"
)

func (c *catalog) registerMixer(table *dispatch.Table) {
	table.Register("get_master_track_info", dispatch.ReadOnly, c.getMasterTrackInfo)
	table.Register("get_return_tracks", dispatch.ReadOnly, c.getReturnTracks)

	table.Register("set_track_volume", dispatch.Mutating, c.mutating(c.setTrackVolume))
	table.Register("set_track_pan", dispatch.Mutating, c.mutating(c.setTrackPan))
	table.Register("set_track_mute", dispatch.Mutating, c.mutating(c.setTrackMute))
	table.Register("set_track_solo", dispatch.Mutating, c.mutating(c.setTrackSolo))
	table.Register("set_track_send", dispatch.Mutating, c.mutating(c.setTrackSend))
	table.Register("set_master_volume", dispatch.Mutating, c.mutating(c.setMasterVolume))
}

func (c *catalog) getMasterTrackInfo(ctx context.Context, params dispatch.Params) (any, error) {
	master := c.song.Master()
	devices := []any{}
	for i, device := range master.Devices() {
		devices = append(devices, map[string]any{
			"index":      i,
			"name":       device.Name,
			"class_name": device.ClassName,
			"type":       device.Type,
		})
	}
	return map[string]any{
		"name":    master.Name(),
		"volume":  master.Volume(),
		"panning": master.Pan(),
		"devices": devices,
	}, nil
}

func (c *catalog) getReturnTracks(ctx context.Context, params dispatch.Params) (any, error) {
	returns := []any{}
	for i, track := range c.song.Returns() {
		returns = append(returns, map[string]any{
			"index":   i,
			"name":    track.Name(),
			"volume":  track.Volume(),
			"panning": track.Pan(),
			"muted":   track.Muted(),
		})
	}
	return map[string]any{"return_tracks": returns, "count": len(returns)}, nil
}

func (c *catalog) setTrackVolume(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	volume, err := params.Float("volume", 0.85)
	if err != nil {
		return nil, err
	}
	track.SetVolume(volume)
	return map[string]any{"name": track.Name(), "volume": track.Volume()}, nil
}

func (c *catalog) setTrackPan(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	pan, err := params.Float("pan", 0.0)
	if err != nil {
		return nil, err
	}
	track.SetPan(pan)
	return map[string]any{"name": track.Name(), "panning": track.Pan()}, nil
}

func (c *catalog) setTrackMute(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	mute, err := params.Bool("mute", true)
	if err != nil {
		return nil, err
	}
	track.SetMuted(mute)
	return map[string]any{"name": track.Name(), "muted": mute}, nil
}

func (c *catalog) setTrackSolo(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	solo, err := params.Bool("solo", true)
	if err != nil {
		return nil, err
	}
	track.SetSoloed(solo)
	return map[string]any{"name": track.Name(), "soloed": solo}, nil
}

func (c *catalog) setTrackSend(ctx context.Context, params dispatch.Params) (any, error) {
	trackIndex, err := params.Int("track_index", 0)
	if err != nil {
		return nil, err
	}
	sendIndex, err := params.Int("send_index", 0)
	if err != nil {
		return nil, err
	}
	value, err := params.Float("value", 0.0)
	if err != nil {
		return nil, err
	}
	track, err := c.song.Track(trackIndex)
	if err != nil {
		return nil, err
	}
	if err := track.SetSend(sendIndex, value); err != nil {
		return nil, err
	}
	level, _ := track.Send(sendIndex)
	return map[string]any{
		"track_index": trackIndex,
		"send_index":  sendIndex,
		"value":       level,
	}, nil
}

func (c *catalog) setMasterVolume(ctx context.Context, params dispatch.Params) (any, error) {
	volume, err := params.Float("volume", 0.85)
	if err != nil {
		return nil, err
	}
	master := c.song.Master()
	master.SetVolume(volume)
	return map[string]any{"volume": master.Volume()}, nil
}
