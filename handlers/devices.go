// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"

	"github.com/songbridge/songbridge/dispatch"
	"github.com/songbridge/songbridge/song"
)

func (c *catalog) registerDevices(table *dispatch.Table) {
	table.Register("get_device_parameters", dispatch.ReadOnly, c.getDeviceParameters)

	table.Register("load_device", dispatch.Mutating, c.mutating(c.loadDevice))
	table.Register("set_device_parameter", dispatch.Mutating, c.mutating(c.setDeviceParameter))
	table.Register("delete_device", dispatch.Mutating, c.mutating(c.deleteDevice))
}

// loadDevice appends a device to a track's chain. Controllers may
// declare the device's parameter set up front; every device gets a
// leading "Device On" toggle regardless, matching what instruments
// and effects expose.
func (c *catalog) loadDevice(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	name, err := params.String("name", "")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("load_device requires a device name")
	}
	className, err := params.String("class_name", name)
	if err != nil {
		return nil, err
	}
	deviceType, err := params.String("device_type", "audio_effect")
	if err != nil {
		return nil, err
	}
	switch deviceType {
	case "instrument", "audio_effect", "midi_effect":
	default:
		return nil, fmt.Errorf("unknown device_type %q (want instrument, audio_effect or midi_effect)", deviceType)
	}

	device := &song.Device{
		Name:       name,
		ClassName:  className,
		Type:       deviceType,
		Parameters: []song.Parameter{{Name: "Device On", Value: 1, Min: 0, Max: 1}},
	}
	list, err := params.List("parameters")
	if err != nil {
		return nil, err
	}
	for i, entry := range list {
		object, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %d: expected an object, got %T", i, entry)
		}
		parameter, err := parseParameter(dispatch.Params(object))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		device.Parameters = append(device.Parameters, parameter)
	}
	track.AddDevice(device)
	return map[string]any{
		"loaded":       true,
		"device_index": len(track.Devices()) - 1,
		"device_name":  device.Name,
		"type":         device.Type,
	}, nil
}

// parseParameter applies the per-field parameter defaults: a unit
// range with the value clamped into it.
func parseParameter(object dispatch.Params) (song.Parameter, error) {
	name, err := object.String("name", "")
	if err != nil {
		return song.Parameter{}, err
	}
	if name == "" {
		return song.Parameter{}, fmt.Errorf("parameter name is required")
	}
	min, err := object.Float("min", 0.0)
	if err != nil {
		return song.Parameter{}, err
	}
	max, err := object.Float("max", 1.0)
	if err != nil {
		return song.Parameter{}, err
	}
	if max < min {
		return song.Parameter{}, fmt.Errorf("parameter %q: max %g below min %g", name, max, min)
	}
	value, err := object.Float("value", min)
	if err != nil {
		return song.Parameter{}, err
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return song.Parameter{Name: name, Value: value, Min: min, Max: max}, nil
}

func (c *catalog) resolveDevice(params dispatch.Params) (*song.Device, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	deviceIndex, err := params.Int("device_index", 0)
	if err != nil {
		return nil, err
	}
	return track.Device(deviceIndex)
}

func (c *catalog) getDeviceParameters(ctx context.Context, params dispatch.Params) (any, error) {
	device, err := c.resolveDevice(params)
	if err != nil {
		return nil, err
	}
	parameters := []any{}
	for i, parameter := range device.Parameters {
		parameters = append(parameters, map[string]any{
			"index": i,
			"name":  parameter.Name,
			"value": parameter.Value,
			"min":   parameter.Min,
			"max":   parameter.Max,
		})
	}
	return map[string]any{
		"device_name": device.Name,
		"class_name":  device.ClassName,
		"type":        device.Type,
		"parameters":  parameters,
	}, nil
}

// setDeviceParameter targets a parameter by index or, when
// parameter_name is given, by name. Values clamp to the parameter's
// declared range.
func (c *catalog) setDeviceParameter(ctx context.Context, params dispatch.Params) (any, error) {
	device, err := c.resolveDevice(params)
	if err != nil {
		return nil, err
	}
	value, err := params.Float("value", 0.0)
	if err != nil {
		return nil, err
	}

	name, err := params.String("parameter_name", "")
	if err != nil {
		return nil, err
	}
	index := -1
	if name != "" {
		for i := range device.Parameters {
			if device.Parameters[i].Name == name {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("device %q has no parameter named %q", device.Name, name)
		}
	} else {
		index, err = params.Int("parameter_index", 0)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(device.Parameters) {
			return nil, fmt.Errorf("parameter index %d out of range (%d parameters)", index, len(device.Parameters))
		}
	}

	parameter := &device.Parameters[index]
	if value < parameter.Min {
		value = parameter.Min
	}
	if value > parameter.Max {
		value = parameter.Max
	}
	parameter.Value = value
	return map[string]any{
		"parameter_name": parameter.Name,
		"value":          parameter.Value,
		"min":            parameter.Min,
		"max":            parameter.Max,
	}, nil
}

func (c *catalog) deleteDevice(ctx context.Context, params dispatch.Params) (any, error) {
	track, err := c.resolveTrack(params)
	if err != nil {
		return nil, err
	}
	deviceIndex, err := params.Int("device_index", 0)
	if err != nil {
		return nil, err
	}
	device, err := track.RemoveDevice(deviceIndex)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "device_name": device.Name}, nil
}
