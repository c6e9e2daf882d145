/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"github.com/spf13/cobra"

	"goscene/internal/version"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "goscene",
		Short:         "goscene edits a persistent 2D scene of rectangles, circles and text",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", a.configPath, "config file (default is the user config dir)")
	pf.StringVar(&a.backend, "backend", a.backend, "storage backend: memory, file, sqlite or postgres")
	pf.StringVar(&a.path, "path", a.path, "storage location for the file and sqlite backends")

	root.AddCommand(
		newVersionCmd(),
		newCreateCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSelectCmd(a),
		newUpdateCmd(a),
		newReorderCmd(a, "raise"),
		newReorderCmd(a, "lower"),
		newDeleteCmd(a),
		newDragCmd(a),
		newResizeCmd(a),
		newNudgeCmd(a),
		newExportCmd(a),
		newReloadCmd(a),
		newPlayCmd(a),
		newReplCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
