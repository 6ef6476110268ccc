/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGen produces identities for new slides and elements. It is injected into
// the store so tests can supply deterministic, collision-free ids without
// relying on wall-clock time.
type IDGen interface {
	NewID() string
}

// UUIDGen is the production generator backed by random UUIDs.
type UUIDGen struct{}

func (UUIDGen) NewID() string { return uuid.NewString() }

// SeqGen returns ids "<prefix>-1", "<prefix>-2", ... Deterministic; used in
// tests and for readable ids in fixtures. Safe for concurrent use.
type SeqGen struct {
	Prefix string
	n      atomic.Int64
}

func (g *SeqGen) NewID() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}
