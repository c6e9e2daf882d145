/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"fmt"
	"io"
	"strings"
)

// TextRenderer prints the layer list and panel of each frame. Used by the CLI.
type TextRenderer struct {
	W io.Writer
}

func (r TextRenderer) Render(f Frame) {
	fmt.Fprint(r.W, FormatFrame(f))
}

// FormatFrame renders the layer list topmost first, the selected row marked with '*',
// followed by the panel when something is selected.
func FormatFrame(f Frame) string {
	var b strings.Builder
	if len(f.Layers) == 0 {
		b.WriteString("(empty canvas)\n")
	}
	nodes := make(map[int]Node, len(f.Nodes))
	for _, n := range f.Nodes {
		nodes[n.ID] = n
	}
	for _, row := range f.Layers {
		mark := " "
		if row.Selected {
			mark = "*"
		}
		n := nodes[row.ID]
		fmt.Fprintf(&b, "%s %3d  %-9s z=%-3d %4d,%-4d %4dx%-4d %s\n",
			mark, row.ID, row.Label, row.ZIndex, n.X, n.Y, n.Width, n.Height, n.Background)
	}
	if p := f.Panel; p.Enabled {
		fmt.Fprintf(&b, "selected: x=%d y=%d w=%d h=%d opacity=%d rotation=%d fill=%s",
			p.X, p.Y, p.Width, p.Height, p.Opacity, p.Rotation, p.Fill)
		if p.CornerRadiusEnabled {
			fmt.Fprintf(&b, " radius=%s", p.CornerRadius)
		}
		if p.ContentEnabled {
			fmt.Fprintf(&b, " color=%s content=%q", p.TextColor, p.Content)
		}
		b.WriteString("\n")
	}
	return b.String()
}
