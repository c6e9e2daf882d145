/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"goscene/internal/interaction"
	"goscene/internal/view"
)

var eventWords = map[string]bool{"down": true, "move": true, "up": true, "key": true}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session: each line is a command or an input event",
		Long: `Each line is either a goscene command without the program name
(create rect, select 2, update 2 --fill green, ...) or an input event
(down X Y, move X Y, up X Y, key ArrowLeft). The layer list and panel are
printed after every change. "quit" or end of input leaves the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			model := view.NewModel(a.fonts, nil)
			cancel := ed.Subscribe(model.Apply)
			defer cancel()
			fmt.Fprint(out, view.FormatFrame(model.Last()))

			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !sc.Scan() {
					fmt.Fprintln(out)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				if line == "quit" || line == "exit" {
					return nil
				}
				before := model.Frames()
				if err := a.replLine(cmd, line); err != nil {
					fmt.Fprintln(out, "Error:", err)
				}
				if model.Frames() != before {
					fmt.Fprint(out, view.FormatFrame(model.Last()))
				}
			}
		},
	}
}

// replLine runs one REPL line against the already open session.
func (a *app) replLine(parent *cobra.Command, line string) error {
	fields := strings.Fields(line)
	if eventWords[strings.ToLower(fields[0])] {
		ev, err := interaction.ParseEvent(line)
		if err != nil {
			return err
		}
		return a.ed.Handle(parent.Context(), ev)
	}
	if fields[0] == "repl" {
		return errors.New("already in a repl")
	}
	sub := newRootCmd(a)
	sub.SetArgs(fields)
	sub.SetIn(strings.NewReader(""))
	sub.SetOut(parent.OutOrStdout())
	sub.SetErr(io.Discard)
	a.log.Debug("repl command", slog.String("line", line))
	return sub.ExecuteContext(parent.Context())
}
