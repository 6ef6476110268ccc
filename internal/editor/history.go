/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"sync"
	"time"
)

// Snapshot is an opaque serialized Presentation captured before a mutation.
// Size is estimated as len(Blob).
type Snapshot struct {
	Blob []byte
	TS   time.Time
}

// HistoryConfig controls memory and depth caps and coalescing behavior.
type HistoryConfig struct {
	// MaxBytes is a soft cap; oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the number of past snapshots kept (0 means unlimited).
	MaxDepth int
	// MinInterval drops snapshots captured within the interval of the previous
	// one, keeping the oldest of a burst so a rapid stream of drag updates
	// collapses into a single undo step.
	MinInterval time.Duration
}

// History is the linear undo/redo stack over whole-presentation snapshots.
// Pushing a snapshot clears the redo side. It is safe for concurrent use.
type History struct {
	cfg HistoryConfig
	mu  sync.Mutex

	past   []Snapshot
	future []Snapshot

	totalBytes int
}

func NewHistory(cfg HistoryConfig) *History {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	return &History{cfg: cfg}
}

// Push records the pre-mutation snapshot. Within MinInterval of the previous
// push the snapshot is dropped (the earlier one already captures the state the
// user would want to return to). Any push clears the redo stack.
func (h *History) Push(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.future = nil
	if n := len(h.past); n > 0 && h.cfg.MinInterval > 0 {
		if s.TS.Sub(h.past[n-1].TS) < h.cfg.MinInterval {
			return
		}
	}
	h.past = append(h.past, s)
	h.totalBytes += len(s.Blob)
	h.enforceCapsLocked()
}

// Undo exchanges the current state for the most recent past snapshot. The
// caller supplies the serialized current state, which becomes redoable.
func (h *History) Undo(current []byte) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.past) == 0 {
		return Snapshot{}, false
	}
	s := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.totalBytes -= len(s.Blob)
	h.future = append(h.future, Snapshot{Blob: current, TS: time.Now()})
	return s, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current []byte) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.future) == 0 {
		return Snapshot{}, false
	}
	s := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, Snapshot{Blob: current, TS: time.Now()})
	h.totalBytes += len(current)
	h.enforceCapsLocked()
	return s, true
}

// CanUndo reports whether a past snapshot is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether a future snapshot is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// Clear drops both stacks, e.g. when a different deck is opened.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.past = nil
	h.future = nil
	h.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (totalBytes, past, future int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalBytes, len(h.past), len(h.future)
}

func (h *History) enforceCapsLocked() {
	if h.cfg.MaxDepth > 0 && len(h.past) > h.cfg.MaxDepth {
		toDrop := len(h.past) - h.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			h.totalBytes -= len(h.past[i].Blob)
		}
		h.past = append([]Snapshot{}, h.past[toDrop:]...)
	}
	for h.cfg.MaxBytes > 0 && h.totalBytes > h.cfg.MaxBytes && len(h.past) > 1 {
		h.totalBytes -= len(h.past[0].Blob)
		h.past = h.past[1:]
	}
}
