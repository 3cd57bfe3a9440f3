// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package song

import "fmt"

// TrackKind distinguishes the track flavors in the song graph.
type TrackKind int

const (
	KindMIDI TrackKind = iota
	KindAudio
	KindReturn
	KindMaster
)

// String returns the kind name used in wire payloads.
func (k TrackKind) String() string {
	switch k {
	case KindMIDI:
		return "midi"
	case KindAudio:
		return "audio"
	case KindReturn:
		return "return"
	case KindMaster:
		return "master"
	}
	return fmt.Sprintf("TrackKind(%d)", int(k))
}

// Parameter is one automatable device parameter.
type Parameter struct {
	Name  string  `cbor:"name"`
	Value float64 `cbor:"value"`
	Min   float64 `cbor:"min"`
	Max   float64 `cbor:"max"`
}

// Device is one device in a track's device chain.
type Device struct {
	Name       string
	ClassName  string
	Type       string
	Parameters []Parameter
}

func (d *Device) clone() *Device {
	duplicate := *d
	duplicate.Parameters = make([]Parameter, len(d.Parameters))
	copy(duplicate.Parameters, d.Parameters)
	return &duplicate
}

// ClipSlot is one cell of the session grid. At most one clip lives in
// a slot at a time.
type ClipSlot struct {
	clip *Clip
}

// HasClip reports whether the slot holds a clip.
func (s *ClipSlot) HasClip() bool { return s.clip != nil }

// Clip returns the slot's clip, or nil when the slot is empty.
func (s *ClipSlot) Clip() *Clip { return s.clip }

// CreateClip places a new MIDI clip of the given length in the slot.
func (s *ClipSlot) CreateClip(length float64) (*Clip, error) {
	if s.clip != nil {
		return nil, fmt.Errorf("clip slot already has a clip")
	}
	if length <= 0 {
		return nil, fmt.Errorf("clip length must be positive, got %g", length)
	}
	s.clip = newMIDIClip(length)
	return s.clip, nil
}

// DeleteClip removes the slot's clip.
func (s *ClipSlot) DeleteClip() error {
	if s.clip == nil {
		return fmt.Errorf("no clip in slot")
	}
	s.clip = nil
	return nil
}

func (s *ClipSlot) clone() *ClipSlot {
	duplicate := &ClipSlot{}
	if s.clip != nil {
		duplicate.clip = s.clip.clone()
	}
	return duplicate
}

// Track is one track in the song: a regular MIDI or audio track, a
// return track, or the master track. Regular tracks carry clip slots
// and sends; the master track carries neither.
type Track struct {
	kind    TrackKind
	name    string
	color   int
	armed   bool
	muted   bool
	soloed  bool
	volume  float64
	pan     float64
	sends   []float64
	slots   []*ClipSlot
	devices []*Device
}

func newTrack(kind TrackKind, name string, sceneCount, returnCount int) *Track {
	track := &Track{
		kind:   kind,
		name:   name,
		volume: defaultVolume,
	}
	if kind == KindMIDI || kind == KindAudio {
		track.sends = make([]float64, returnCount)
		for i := 0; i < sceneCount; i++ {
			track.slots = append(track.slots, &ClipSlot{})
		}
	}
	return track
}

// Kind returns the track kind.
func (t *Track) Kind() TrackKind { return t.kind }

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// SetName renames the track.
func (t *Track) SetName(name string) { t.name = name }

// Color returns the track color index.
func (t *Track) Color() int { return t.color }

// SetColor sets the track color index.
func (t *Track) SetColor(color int) { t.color = color }

// Armed reports whether the track is armed for recording.
func (t *Track) Armed() bool { return t.armed }

// SetArmed arms or disarms the track. Only regular tracks can arm.
func (t *Track) SetArmed(armed bool) error {
	if t.kind != KindMIDI && t.kind != KindAudio {
		return fmt.Errorf("%s track cannot be armed", t.kind)
	}
	t.armed = armed
	return nil
}

// Muted reports whether the track is muted.
func (t *Track) Muted() bool { return t.muted }

// SetMuted mutes or unmutes the track.
func (t *Track) SetMuted(muted bool) { t.muted = muted }

// Soloed reports whether the track is soloed.
func (t *Track) Soloed() bool { return t.soloed }

// SetSoloed solos or unsolos the track.
func (t *Track) SetSoloed(soloed bool) { t.soloed = soloed }

// Volume returns the track volume in the 0..1 mixer range.
func (t *Track) Volume() float64 { return t.volume }

// SetVolume sets the track volume, clamped to 0..1.
func (t *Track) SetVolume(volume float64) { t.volume = clampFloat(volume, 0, 1) }

// Pan returns the track panning in the -1..1 range.
func (t *Track) Pan() float64 { return t.pan }

// SetPan sets the track panning, clamped to -1..1.
func (t *Track) SetPan(pan float64) { t.pan = clampFloat(pan, -1, 1) }

// Send returns the send level toward the given return track.
func (t *Track) Send(index int) (float64, error) {
	if index < 0 || index >= len(t.sends) {
		return 0, fmt.Errorf("send index %d out of range (%d sends)", index, len(t.sends))
	}
	return t.sends[index], nil
}

// SetSend sets the send level toward the given return track, clamped
// to 0..1.
func (t *Track) SetSend(index int, level float64) error {
	if index < 0 || index >= len(t.sends) {
		return fmt.Errorf("send index %d out of range (%d sends)", index, len(t.sends))
	}
	t.sends[index] = clampFloat(level, 0, 1)
	return nil
}

// Sends returns a copy of the track's send levels.
func (t *Track) Sends() []float64 {
	sends := make([]float64, len(t.sends))
	copy(sends, t.sends)
	return sends
}

// SlotCount returns the number of clip slots on the track.
func (t *Track) SlotCount() int { return len(t.slots) }

// Slot returns the clip slot at the given scene index.
func (t *Track) Slot(index int) (*ClipSlot, error) {
	if index < 0 || index >= len(t.slots) {
		return nil, fmt.Errorf("clip index %d out of range (%d slots)", index, len(t.slots))
	}
	return t.slots[index], nil
}

// Devices returns the track's device chain.
func (t *Track) Devices() []*Device { return t.devices }

// AddDevice appends a device to the track's chain.
func (t *Track) AddDevice(device *Device) { t.devices = append(t.devices, device) }

// RemoveDevice removes the device at the given chain position.
func (t *Track) RemoveDevice(index int) (*Device, error) {
	device, err := t.Device(index)
	if err != nil {
		return nil, err
	}
	t.devices = append(t.devices[:index], t.devices[index+1:]...)
	return device, nil
}

// Device returns the device at the given chain position.
func (t *Track) Device(index int) (*Device, error) {
	if index < 0 || index >= len(t.devices) {
		return nil, fmt.Errorf("device index %d out of range (%d devices)", index, len(t.devices))
	}
	return t.devices[index], nil
}

// FireSlot starts the clip in the given slot and stops any other clip
// playing on the track. Session playback is exclusive per track.
func (t *Track) FireSlot(index int) error {
	slot, err := t.Slot(index)
	if err != nil {
		return err
	}
	if slot.clip == nil {
		return fmt.Errorf("no clip in slot")
	}
	t.StopAllClips()
	slot.clip.playing = true
	return nil
}

// StopSlot stops the clip in the given slot if one is playing.
func (t *Track) StopSlot(index int) error {
	slot, err := t.Slot(index)
	if err != nil {
		return err
	}
	if slot.clip != nil {
		slot.clip.playing = false
	}
	return nil
}

// StopAllClips stops every playing clip on the track.
func (t *Track) StopAllClips() {
	for _, slot := range t.slots {
		if slot.clip != nil {
			slot.clip.playing = false
		}
	}
}

// PlayingSlot returns the index of the slot whose clip is playing, or
// -1 when the track is silent.
func (t *Track) PlayingSlot() int {
	for i, slot := range t.slots {
		if slot.clip != nil && slot.clip.playing {
			return i
		}
	}
	return -1
}

func (t *Track) clone() *Track {
	duplicate := *t
	duplicate.sends = make([]float64, len(t.sends))
	copy(duplicate.sends, t.sends)
	duplicate.slots = make([]*ClipSlot, len(t.slots))
	for i, slot := range t.slots {
		duplicate.slots[i] = slot.clone()
	}
	duplicate.devices = make([]*Device, len(t.devices))
	for i, device := range t.devices {
		duplicate.devices[i] = device.clone()
	}
	return &duplicate
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
