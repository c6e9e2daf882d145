/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"goscene/internal/domain"
	"goscene/internal/textlayout"
)

// Document is a static snapshot of the canvas, nodes in paint order.
type Document struct {
	Canvas domain.Canvas `json:"canvas"`
	Nodes  []Node        `json:"nodes"`
}

// Flatten captures elems as a document. Selection markers are not part of a snapshot.
func Flatten(p textlayout.Provider, elems []domain.Element, canvas domain.Canvas) Document {
	return Document{Canvas: canvas, Nodes: Nodes(p, elems, nil)}
}
