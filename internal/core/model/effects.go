// Copyright 2025 TrackForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model defines the core data structures for the application. This
// file defines the closed set of visual effects the renderer understands and
// the validated configuration type that carries them. The set is closed on
// purpose: an unrecognized effect name is rejected up front with a
// configuration error rather than silently ignored, so a job never burns
// minutes of rendering before the mistake surfaces.
package model

import "fmt"

// Effect identifies one of the supported visual effects.
type Effect int

const (
	// EffectZoom scales the background in and out with the beat.
	EffectZoom Effect = iota
	// EffectPulse brightens the frame on each beat and decays between beats.
	EffectPulse
	// EffectGlitch offsets color channels on high-energy beats.
	EffectGlitch
	// EffectTextOverlay draws the track title over the visualization.
	EffectTextOverlay
)

var effectNames = map[Effect]string{
	EffectZoom:        "zoom",
	EffectPulse:       "pulse",
	EffectGlitch:      "glitch",
	EffectTextOverlay: "text_overlay",
}

var effectsByName = map[string]Effect{
	"zoom":         EffectZoom,
	"pulse":        EffectPulse,
	"glitch":       EffectGlitch,
	"text_overlay": EffectTextOverlay,
}

// String returns the wire name of the effect.
func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// ParseEffect resolves a wire name to an Effect. Unknown names produce a
// ConfigurationError so invalid requests fail before any frame is rendered.
func ParseEffect(name string) (Effect, error) {
	if e, ok := effectsByName[name]; ok {
		return e, nil
	}
	return 0, NewConfigurationError("effects", fmt.Sprintf("unknown effect %q", name), nil)
}

// ParseEffects resolves a list of wire names, failing on the first unknown
// name. A nil or empty input yields an empty effect list, which renders the
// plain visualization.
func ParseEffects(names []string) ([]Effect, error) {
	effects := make([]Effect, 0, len(names))
	for _, name := range names {
		e, err := ParseEffect(name)
		if err != nil {
			return nil, err
		}
		effects = append(effects, e)
	}
	return effects, nil
}

// EffectNames converts an effect list back to wire names, used when
// persisting job metadata.
func EffectNames(effects []Effect) []string {
	names := make([]string, 0, len(effects))
	for _, e := range effects {
		names = append(names, e.String())
	}
	return names
}
