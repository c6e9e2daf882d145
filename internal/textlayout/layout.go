/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures text element content so views can size text boxes to their content.
// Measurement is behind a Provider so a real font engine can replace the fixed-width default.
package textlayout

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// LineHeight is the distance between baselines.
func (m Metrics) LineHeight() float32 { return m.Ascent + m.Descent + m.LineGap }

// Provider resolves the face used for measuring.
type Provider interface {
	Face() (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13, which keeps measurements deterministic.
type BasicProvider struct{}

func (BasicProvider) Face() (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Box is wrapped text with its measured extent.
type Box struct {
	Lines  []string
	Width  float32
	Height float32
}

// Extent rounds the measured size up to whole pixels.
func (b Box) Extent() (w, h int) {
	return int(math.Ceil(float64(b.Width))), int(math.Ceil(float64(b.Height)))
}

// Wrap breaks content on spaces and newlines so that no line exceeds maxWidth, unless a
// single word is wider. A maxWidth <= 0 disables wrapping. Empty content yields one empty line.
func Wrap(p Provider, content string, maxWidth float32) Box {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Face()
	d := &font.Drawer{Face: face}
	space := advance(d, " ")

	var box Box
	for _, para := range strings.Split(content, "\n") {
		var cur []string
		var curW float32
		flush := func() {
			box.Lines = append(box.Lines, strings.Join(cur, " "))
			if curW > box.Width {
				box.Width = curW
			}
			cur, curW = nil, 0
		}
		for _, word := range strings.Fields(para) {
			w := advance(d, word)
			next := w
			if len(cur) > 0 {
				next = curW + space + w
			}
			if len(cur) > 0 && maxWidth > 0 && next > maxWidth {
				flush()
				next = w
			}
			cur = append(cur, word)
			curW = next
		}
		flush()
	}
	box.Height = float32(len(box.Lines)) * met.LineHeight()
	return box
}

// Measure returns the single-line extent of s.
func Measure(p Provider, s string) (w, h float32) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Face()
	return advance(&font.Drawer{Face: face}, s), met.Ascent + met.Descent
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s) >> 6) // fixed.Int26_6 to px
}
