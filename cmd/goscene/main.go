/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"goscene/internal/crash"
	applog "goscene/internal/log"
)

func main() {
	applog.Init(applog.FromEnv())
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	a := newApp()
	defer crash.Recover(a, a.crashDir())
	ctx := context.Background()
	defer a.close(ctx)

	root := newRootCmd(a)
	root.SetOut(os.Stdout)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		a.log.Error("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
