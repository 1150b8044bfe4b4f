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

// Package render implements the visualizer stage of the pipeline. It turns
// an audio analysis and a set of render options into a sequence of RGBA
// frames synchronized to the beat grid.
//
// Logic Flow:
//  1. Validate the render options up front. A bad resolution, frame rate,
//     or background image fails the job before a single frame exists.
//  2. For each frame, compute the beat intensity: 1.0 exactly on a beat,
//     decaying exponentially with the time since the most recent beat.
//  3. Draw the background. Uploaded images cycle on the beat grid; without
//     images an abstract waveform visualization derived from the amplitude
//     envelope fills the frame.
//  4. Apply the requested effects on top: zoom scales the background with
//     the intensity, pulse brightens the whole frame, glitch tears the
//     color channels on strong beats, and text_overlay draws the title.
//
// Frames are produced lazily through FrameStream, one at a time in display
// order. The stream is not restartable; the encoder consumes it exactly
// once.
package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/trackforge/go-video-gen/internal/core/model"
)

const stageName = "renderer"

// beatDecay is the time constant of the on-beat intensity falloff. A beat
// reads near zero again after roughly three time constants.
const beatDecay = 250 * time.Millisecond

// fadeDuration is the length of the fade-in at the start of the video and
// the fade-out at the end.
const fadeDuration = time.Second

// Visualizer draws beat-synced frames for a track.
type Visualizer struct {
	palette Palette
}

// NewVisualizer creates a visualizer with the default palette.
func NewVisualizer() *Visualizer {
	return &Visualizer{palette: DefaultPalette()}
}

// NewVisualizerWithPalette creates a visualizer with a custom color scheme.
func NewVisualizerWithPalette(p Palette) *Visualizer {
	return &Visualizer{palette: p}
}

// Render validates the options and returns the frame stream for the track.
// All validation errors are ConfigurationErrors raised before the first
// frame is drawn.
func (v *Visualizer) Render(analysis *model.AudioAnalysis, spec model.RenderSpec) (*FrameStream, error) {
	if analysis == nil || analysis.Duration <= 0 {
		return nil, model.NewConfigurationError(stageName, "missing or empty audio analysis", nil)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, model.NewConfigurationError(stageName,
			fmt.Sprintf("invalid resolution %dx%d", spec.Width, spec.Height), nil)
	}
	// H.264 with yuv420p chroma subsampling needs even dimensions.
	if spec.Width%2 != 0 || spec.Height%2 != 0 {
		return nil, model.NewConfigurationError(stageName,
			fmt.Sprintf("resolution %dx%d must have even dimensions", spec.Width, spec.Height), nil)
	}
	if spec.FPS <= 0 {
		return nil, model.NewConfigurationError(stageName,
			fmt.Sprintf("invalid frame rate %d", spec.FPS), nil)
	}

	images, err := loadImages(spec.ImagePaths)
	if err != nil {
		return nil, err
	}

	face, err := titleFace(spec.Height)
	if err != nil {
		return nil, err
	}

	frameCount := int(math.Round(analysis.Duration.Seconds() * float64(spec.FPS)))
	if frameCount < 1 {
		frameCount = 1
	}

	return &FrameStream{
		visualizer: v,
		analysis:   analysis,
		spec:       spec,
		images:     images,
		face:       face,
		frameCount: frameCount,
	}, nil
}

// loadImages decodes the background images. An unreadable or undecodable
// image is a configuration problem with the job, not a transient failure.
func loadImages(paths []string) ([]image.Image, error) {
	images := make([]image.Image, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, model.NewConfigurationError(stageName,
				fmt.Sprintf("background image %s unreadable", path), err)
		}
		img, _, err := image.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, model.NewConfigurationError(stageName,
				fmt.Sprintf("background image %s is not a supported PNG or JPEG", path), err)
		}
		images = append(images, img)
	}
	return images, nil
}

// titleFace builds the overlay font face from the embedded bold font, sized
// relative to the frame height so titles scale with the resolution.
func titleFace(height int) (font.Face, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, model.NewResourceError(stageName, "embedded font unavailable", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(height) / 16,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, model.NewResourceError(stageName, "failed to build font face", err)
	}
	return face, nil
}

// FrameStream produces the rendered frames one at a time in display order.
// It is single-use: once Next returns false the stream is exhausted.
type FrameStream struct {
	visualizer *Visualizer
	analysis   *model.AudioAnalysis
	spec       model.RenderSpec
	images     []image.Image
	face       font.Face
	frameCount int
	next       int
	beatCursor int
}

// Width returns the frame width in pixels.
func (s *FrameStream) Width() int { return s.spec.Width }

// Height returns the frame height in pixels.
func (s *FrameStream) Height() int { return s.spec.Height }

// FPS returns the stream frame rate.
func (s *FrameStream) FPS() int { return s.spec.FPS }

// FrameCount returns the total number of frames the stream will produce.
func (s *FrameStream) FrameCount() int { return s.frameCount }

// Next renders and returns the next frame. The second return value is false
// once all frames have been produced.
func (s *FrameStream) Next() (*image.RGBA, bool) {
	if s.next >= s.frameCount {
		return nil, false
	}
	t := time.Duration(float64(s.next) / float64(s.spec.FPS) * float64(time.Second))

	// Advance the beat cursor so background image cycling tracks the grid.
	for s.beatCursor < len(s.analysis.Beats) && s.analysis.Beats[s.beatCursor] <= t {
		s.beatCursor++
	}

	frame := s.visualizer.drawFrame(s, t)
	s.next++
	return frame, true
}

// drawFrame renders a single frame at track time t.
func (v *Visualizer) drawFrame(s *FrameStream, t time.Duration) *image.RGBA {
	spec := s.spec
	dc := gg.NewContext(spec.Width, spec.Height)

	intensity := beatIntensity(s.analysis, t)
	amplitude := s.analysis.EnvelopeAt(t)

	if len(s.images) > 0 {
		v.drawImageBackground(dc, s, intensity)
	} else {
		v.drawWaveformBackground(dc, s, t, amplitude, intensity)
	}

	if hasEffect(spec.Effects, model.EffectPulse) {
		dc.SetRGBA(1, 1, 1, 0.22*intensity)
		dc.DrawRectangle(0, 0, float64(spec.Width), float64(spec.Height))
		dc.Fill()
	}

	if hasEffect(spec.Effects, model.EffectTextOverlay) && spec.Title != "" {
		v.drawTitle(dc, s, spec.Title)
	}

	v.drawFade(dc, s, t)

	frame := dc.Image().(*image.RGBA)

	if hasEffect(spec.Effects, model.EffectGlitch) && intensity > 0.75 && amplitude > 0.4 {
		chromaShift(frame, 2+int(6*intensity))
	}
	return frame
}

// beatIntensity is 1.0 exactly on a beat and decays exponentially with the
// time elapsed since the most recent beat.
func beatIntensity(analysis *model.AudioAnalysis, t time.Duration) float64 {
	last, ok := analysis.LastBeatBefore(t)
	if !ok {
		return 0
	}
	return math.Exp(-float64(t-last) / float64(beatDecay))
}

// drawImageBackground scales the current background image to cover the
// frame, cycling to the next image on each beat. The zoom effect widens the
// scale with the beat intensity.
func (v *Visualizer) drawImageBackground(dc *gg.Context, s *FrameStream, intensity float64) {
	img := s.images[s.beatCursor%len(s.images)]
	bounds := img.Bounds()

	cover := math.Max(
		float64(s.spec.Width)/float64(bounds.Dx()),
		float64(s.spec.Height)/float64(bounds.Dy()))
	scale := cover
	if hasEffect(s.spec.Effects, model.EffectZoom) {
		scale = cover * zoomScale(intensity)
	}

	cx := float64(s.spec.Width) / 2
	cy := float64(s.spec.Height) / 2
	dc.Push()
	dc.ScaleAbout(scale, scale, cx, cy)
	dc.DrawImageAnchored(img, int(cx), int(cy), 0.5, 0.5)
	dc.Pop()

	// Dim the photo so overlays stay readable.
	dc.SetRGBA(0, 0, 0, 0.35)
	dc.DrawRectangle(0, 0, float64(s.spec.Width), float64(s.spec.Height))
	dc.Fill()
}

// drawWaveformBackground fills the frame with the fallback visualization: a
// vertical gradient and a row of mirrored bars driven by the amplitude
// envelope. Used whenever the job supplies no background images.
func (v *Visualizer) drawWaveformBackground(dc *gg.Context, s *FrameStream, t time.Duration, amplitude, intensity float64) {
	w := float64(s.spec.Width)
	h := float64(s.spec.Height)

	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, v.palette.Background)
	grad.AddColorStop(1, v.palette.Glow)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	const bars = 64
	slot := w / bars
	barWidth := slot * 0.6
	maxHeight := h * 0.35
	seconds := t.Seconds()

	accent := v.palette.Accent
	for i := 0; i < bars; i++ {
		variation := 0.35 + 0.65*math.Abs(math.Sin(0.45*float64(i)+2.2*seconds))
		barHeight := amplitude * variation * maxHeight * (1 + 0.3*intensity)
		if barHeight < 2 {
			barHeight = 2
		}
		x := float64(i)*slot + (slot-barWidth)/2
		dc.SetRGBA255(int(accent.R), int(accent.G), int(accent.B), 230)
		dc.DrawRoundedRectangle(x, h/2-barHeight, barWidth, barHeight*2, barWidth/3)
		dc.Fill()
	}

	// Glow particles on loud passages and hard beats.
	if amplitude > 0.7 || intensity > 0.9 {
		tick := math.Floor(seconds * 2)
		for i := 0; i < 12; i++ {
			px := (0.5 + 0.5*math.Sin(7.3*float64(i)+1.7*tick)) * w
			py := (0.5 + 0.5*math.Cos(3.9*float64(i)+2.3*tick)) * h * 0.8
			radius := 3 + 6*amplitude
			dc.SetRGBA255(int(accent.R), int(accent.G), int(accent.B), 150)
			dc.DrawCircle(px, py, radius)
			dc.Fill()
		}
	}
}

// drawTitle draws the track title near the bottom of the frame with a drop
// shadow for contrast.
func (v *Visualizer) drawTitle(dc *gg.Context, s *FrameStream, title string) {
	w := float64(s.spec.Width)
	h := float64(s.spec.Height)
	dc.SetFontFace(s.face)

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawStringAnchored(title, w/2+3, h*0.88+3, 0.5, 0.5)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(title, w/2, h*0.88, 0.5, 0.5)
}

// drawFade applies the intro fade-in and outro fade-out as a black overlay.
func (v *Visualizer) drawFade(dc *gg.Context, s *FrameStream, t time.Duration) {
	var alpha float64
	if t < fadeDuration {
		alpha = 1 - float64(t)/float64(fadeDuration)
	} else if remaining := s.analysis.Duration - t; remaining < fadeDuration {
		alpha = 1 - float64(remaining)/float64(fadeDuration)
	}
	if alpha <= 0 {
		return
	}
	dc.SetRGBA(0, 0, 0, alpha)
	dc.DrawRectangle(0, 0, float64(s.spec.Width), float64(s.spec.Height))
	dc.Fill()
}
