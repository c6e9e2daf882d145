/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"goscene/internal/domain"
	"goscene/internal/geometry"
	"goscene/internal/interaction"
	"goscene/internal/scene"
	"goscene/internal/view"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func describe(e domain.Element) string {
	return fmt.Sprintf("#%d %s at %d,%d size %dx%d z=%d", e.ID, e.Kind.Label(), e.X, e.Y, e.Width, e.Height, e.ZIndex)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid element id %q", s)
	}
	return id, nil
}

func parseDelta(xs, ys string) (int, int, error) {
	dx, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("bad dx %q: %w", xs, err)
	}
	dy, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("bad dy %q: %w", ys, err)
	}
	return dx, dy, nil
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <rect|circle|text>",
		Short: "Add an element with the kind's default style and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			e, err := ed.Create(cmd.Context(), kind)
			if err != nil {
				return err
			}
			cmd.Println("created", describe(e))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List elements in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			elems := ed.Elements()
			if len(elems) == 0 {
				cmd.Println("no elements")
			}
			for _, e := range elems {
				cmd.Println(describe(e))
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the layer list and the properties of the selected element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.editor(cmd.Context()); err != nil {
				return err
			}
			cmd.Print(view.FormatFrame(a.frame()))
			return nil
		},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id|none>",
		Short: "Select an element, or clear the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			if strings.EqualFold(args[0], "none") {
				if err := ed.ClearSelection(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("selection cleared")
				return nil
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, ok, err := ed.Select(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				cmd.Printf("no element #%d, selection cleared\n", id)
				return nil
			}
			cmd.Println("selected", describe(e))
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		x, y, w, h, opacity, rotation int
		radius, fill, color, content  string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change properties of an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f := cmd.Flags()
			var p scene.Patch
			ints := []struct {
				name string
				v    int
				dst  **int
			}{
				{"x", x, &p.X}, {"y", y, &p.Y}, {"width", w, &p.Width}, {"height", h, &p.Height},
				{"opacity", opacity, &p.Opacity}, {"rotation", rotation, &p.Rotation},
			}
			for _, it := range ints {
				if f.Changed(it.name) {
					*it.dst = scene.Ptr(it.v)
				}
			}
			if f.Changed("radius") {
				r, err := domain.ParseRadius(radius)
				if err != nil {
					return err
				}
				p.CornerRadius = &r
			}
			if f.Changed("fill") {
				p.Fill = scene.Ptr(fill)
			}
			if f.Changed("text-color") {
				p.TextColor = scene.Ptr(color)
			}
			if f.Changed("content") {
				p.Content = scene.Ptr(content)
			}
			if p.Empty() {
				return errors.New("nothing to update, pass at least one property flag")
			}
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			e, ok, err := ed.Update(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no element #%d", id)
			}
			cmd.Println("updated", describe(e))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&x, "x", 0, "left edge")
	f.IntVar(&y, "y", 0, "top edge")
	f.IntVar(&w, "width", 0, "width")
	f.IntVar(&h, "height", 0, "height")
	f.IntVar(&opacity, "opacity", 100, "opacity 0..100")
	f.IntVar(&rotation, "rotation", 0, "rotation in degrees")
	f.StringVar(&radius, "radius", "", "corner radius, pixels or a percentage such as 25%")
	f.StringVar(&fill, "fill", "", "background color")
	f.StringVar(&color, "text-color", "", "text color")
	f.StringVar(&content, "content", "", "text content")
	return cmd
}

func newReorderCmd(a *app, op string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <id>",
		Short: strings.ToUpper(op[:1]) + op[1:] + " an element by one step in the stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			fn := ed.Raise
			if op == "lower" {
				fn = ed.Lower
			}
			moved, err := fn(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !moved {
				cmd.Printf("#%d unchanged\n", id)
				return nil
			}
			for _, e := range ed.Elements() {
				if e.ID == id {
					cmd.Println(op+"d", describe(e))
				}
			}
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an element, the selected one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			var deleted bool
			if len(args) == 0 {
				deleted, err = ed.DeleteSelected(cmd.Context())
			} else {
				var id int
				if id, err = parseID(args[0]); err != nil {
					return err
				}
				deleted, err = ed.Delete(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			if !deleted {
				cmd.Println("nothing deleted")
				return nil
			}
			cmd.Println("deleted")
			return nil
		},
	}
}

// transform runs a move or resize of the selection and reports the outcome.
func transform(cmd *cobra.Command, a *app, h geometry.Handle, dxs, dys string) error {
	dx, dy, err := parseDelta(dxs, dys)
	if err != nil {
		return err
	}
	ed, err := a.editor(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := ed.Selected(); !ok {
		return errors.New("nothing selected")
	}
	e, changed, err := ed.Transform(cmd.Context(), h, dx, dy)
	if err != nil {
		return err
	}
	if !changed {
		cmd.Println("unchanged", describe(e))
		return nil
	}
	cmd.Println("now", describe(e))
	return nil
}

func newDragCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <dx> <dy>",
		Short: "Move the selected element; an axis that would leave the canvas is ignored",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transform(cmd, a, geometry.None, args[0], args[1])
		},
	}
}

func newResizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <handle> <dx> <dy>",
		Short: "Drag a corner handle (tl, tr, bl, br) of the selected element",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := geometry.ParseHandle(args[0])
			if err != nil {
				return err
			}
			if h == geometry.None {
				return errors.New("resize needs a corner handle")
			}
			return transform(cmd, a, h, args[1], args[2])
		},
	}
}

func newNudgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nudge <up|down|left|right> [times]",
		Short: "Press an arrow key on the selected element",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := interaction.ParseKey(args[0])
			switch key {
			case interaction.KeyArrowUp, interaction.KeyArrowDown, interaction.KeyArrowLeft, interaction.KeyArrowRight:
			default:
				return fmt.Errorf("unknown direction %q", args[0])
			}
			times := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid repeat count %q", args[1])
				}
				times = n
			}
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			for i := 0; i < times; i++ {
				if err := ed.Handle(cmd.Context(), interaction.Key(key)); err != nil {
					return err
				}
			}
			if e, ok := ed.Selected(); ok {
				cmd.Println("now", describe(e))
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print a flattened snapshot of the canvas as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			doc := view.Flatten(a.fonts, ed.Elements(), ed.Canvas())
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Discard in-memory state and load the scene from storage again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			if ed.Reload(cmd.Context()) {
				cmd.Printf("reloaded %d elements\n", len(ed.Elements()))
			} else {
				cmd.Println("no stored scene, starting empty")
			}
			return nil
		},
	}
}

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <file|->",
		Short: "Feed an event script (down/move/up X Y, key NAME) through the editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				r = f
			}
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			if err := ed.Run(cmd.Context(), interaction.NewLineSource(r)); err != nil {
				return err
			}
			cmd.Print(view.FormatFrame(a.frame()))
			return nil
		},
	}
}
