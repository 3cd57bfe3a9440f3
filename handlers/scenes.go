// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/songbridge/songbridge/dispatch"
)

func (c *catalog) registerScenes(table *dispatch.Table) {
	table.Register("get_scenes", dispatch.ReadOnly, c.getScenes)

	table.Register("create_scene", dispatch.Mutating, c.mutating(c.createScene))
	table.Register("delete_scene", dispatch.Mutating, c.mutating(c.deleteScene))
	table.Register("duplicate_scene", dispatch.Mutating, c.mutating(c.duplicateScene))
	table.Register("fire_scene", dispatch.Mutating, c.mutating(c.fireScene))
	table.Register("set_scene_name", dispatch.Mutating, c.mutating(c.setSceneName))
	table.Register("set_scene_tempo", dispatch.Mutating, c.mutating(c.setSceneTempo))
}

func (c *catalog) getScenes(ctx context.Context, params dispatch.Params) (any, error) {
	scenes := []any{}
	for i, scene := range c.song.Scenes() {
		scenes = append(scenes, map[string]any{
			"index":       i,
			"name":        scene.Name(),
			"tempo":       scene.Tempo(),
			"color_index": scene.Color(),
		})
	}
	return map[string]any{"scenes": scenes, "count": len(scenes)}, nil
}

func (c *catalog) createScene(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("index", -1)
	if err != nil {
		return nil, err
	}
	scene, newIndex, err := c.song.CreateScene(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{"index": newIndex, "name": scene.Name()}, nil
}

func (c *catalog) deleteScene(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("scene_index", 0)
	if err != nil {
		return nil, err
	}
	scene, err := c.song.DeleteScene(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"deleted":     true,
		"scene_name":  scene.Name(),
		"scene_index": index,
	}, nil
}

func (c *catalog) duplicateScene(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("scene_index", 0)
	if err != nil {
		return nil, err
	}
	duplicate, newIndex, err := c.song.DuplicateScene(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"duplicated":   true,
		"source_index": index,
		"new_index":    newIndex,
		"new_name":     duplicate.Name(),
	}, nil
}

func (c *catalog) fireScene(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("scene_index", 0)
	if err != nil {
		return nil, err
	}
	fired, err := c.song.FireScene(index)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"fired":       true,
		"scene_index": index,
		"clip_count":  fired,
	}, nil
}

func (c *catalog) setSceneName(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("scene_index", 0)
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	scene, err := c.song.Scene(index)
	if err != nil {
		return nil, err
	}
	scene.SetName(name)
	return map[string]any{"scene_index": index, "name": scene.Name()}, nil
}

func (c *catalog) setSceneTempo(ctx context.Context, params dispatch.Params) (any, error) {
	index, err := params.Int("scene_index", 0)
	if err != nil {
		return nil, err
	}
	tempo, err := params.Float("tempo", 0.0)
	if err != nil {
		return nil, err
	}
	scene, err := c.song.Scene(index)
	if err != nil {
		return nil, err
	}
	if err := scene.SetTempo(tempo); err != nil {
		return nil, err
	}
	return map[string]any{"scene_index": index, "tempo": tempo}, nil
}
