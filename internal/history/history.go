// Package history records Level snapshots for undo and redo.
//
// The undo stack holds the states before each step; the buffer holds the live
// state as of the last save together with the label of the step in progress.
// Saves whose label merges with the buffered one overwrite the buffer instead of
// opening a new step.
package history

import (
	"github.com/rs/zerolog/log"

	"lightline-cli/internal/model"
)

type History struct {
	buffer      model.Level
	bufferLabel Label

	undo []model.Level
	redo []model.Level

	// heldRedo is the redo stack a batch cleared when it opened its step. It
	// comes back if the batch ends up changing nothing.
	heldRedo []model.Level

	// limit caps the undo stack; zero keeps everything.
	limit int
}

func New(level *model.Level) *History {
	return &History{buffer: level.Clone()}
}

// SetLimit caps the number of undo steps kept. Older steps are discarded first.
func (h *History) SetLimit(n int) {
	h.limit = max(0, n)
	h.trim()
}

func (h *History) BufferLabel() Label { return h.bufferLabel }
func (h *History) UndoLen() int       { return len(h.undo) }
func (h *History) RedoLen() int       { return len(h.redo) }
func (h *History) CanUndo() bool      { return len(h.undo) > 0 }
func (h *History) CanRedo() bool      { return len(h.redo) > 0 }

// SaveState records level under label. Unchanged levels are ignored.
func (h *History) SaveState(level *model.Level, label Label) {
	if level.Equal(&h.buffer) {
		return
	}
	if h.bufferLabel.ShouldMerge(label) {
		h.buffer = level.Clone()
		log.Trace().Stringer("label", label).Msg("merged change into buffer")
		return
	}
	h.push(level, label)
}

// StartMerge opens a step that absorbs every save until the next Flush.
func (h *History) StartMerge(level *model.Level, label Label) {
	if h.bufferLabel.ShouldMerge(label) {
		h.buffer = level.Clone()
		h.bufferLabel = Merge
		return
	}
	if n := len(h.undo); n == 0 || !h.undo[n-1].Equal(&h.buffer) {
		held := h.redo
		h.push(level, Merge)
		h.heldRedo = held
		return
	}
	h.bufferLabel = Merge
}

// Flush seals the buffered step: the next save under a label other than label
// opens a new step. A step that left the level as it found it is discarded.
func (h *History) Flush(level *model.Level, label Label) {
	h.bufferLabel = label
	h.buffer = level.Clone()
	if n := len(h.undo); n > 0 && h.undo[n-1].Equal(level) {
		h.undo = h.undo[:n-1]
		h.bufferLabel = Unknown
		if h.heldRedo != nil {
			h.redo, h.heldRedo = h.heldRedo, nil
		}
		log.Debug().Stringer("label", label).Msg("dropped empty history step")
		return
	}
	if label == Unknown {
		h.heldRedo = nil
	}
	log.Trace().Stringer("label", label).Msg("flushed changes")
}

// Undo replaces level with the previous state. It reports whether anything changed.
func (h *History) Undo(level *model.Level) bool {
	n := len(h.undo)
	if n == 0 {
		return false
	}
	prev := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, *level)
	*level = prev.Clone()
	h.buffer = prev
	h.bufferLabel = Unknown
	h.heldRedo = nil
	log.Debug().Int("undo", len(h.undo)).Int("redo", len(h.redo)).Msg("change undone")
	return true
}

// Redo reapplies the last undone state. It reports whether anything changed.
func (h *History) Redo(level *model.Level) bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	next := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, *level)
	*level = next.Clone()
	h.buffer = next
	h.bufferLabel = Unknown
	h.heldRedo = nil
	log.Debug().Int("undo", len(h.undo)).Int("redo", len(h.redo)).Msg("change redone")
	return true
}

func (h *History) push(level *model.Level, label Label) {
	h.undo = append(h.undo, h.buffer)
	h.buffer = level.Clone()
	h.bufferLabel = label
	h.redo = nil
	h.heldRedo = nil
	h.trim()
	log.Debug().Stringer("label", label).Int("undo", len(h.undo)).Msg("saved old state, starting new buffer")
}

func (h *History) trim() {
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = append([]model.Level(nil), h.undo[len(h.undo)-h.limit:]...)
	}
}

// Snapshot is the serializable form of a History.
type Snapshot struct {
	Undo        []model.Level `json:"undo"`
	Redo        []model.Level `json:"redo"`
	Buffer      model.Level   `json:"buffer"`
	BufferLabel Label         `json:"bufferLabel"`
}

func (h *History) Snapshot() Snapshot {
	return Snapshot{
		Undo:        cloneAll(h.undo),
		Redo:        cloneAll(h.redo),
		Buffer:      h.buffer.Clone(),
		BufferLabel: h.bufferLabel,
	}
}

// Restore rebuilds a History from a snapshot taken while level was live.
// A buffer that no longer matches the live level is reset to it.
func Restore(s Snapshot, level *model.Level) *History {
	h := &History{
		buffer:      s.Buffer.Clone(),
		bufferLabel: s.BufferLabel,
		undo:        cloneAll(s.Undo),
		redo:        cloneAll(s.Redo),
	}
	if !h.buffer.Equal(level) {
		h.buffer = level.Clone()
		h.bufferLabel = Unknown
	}
	return h
}

func cloneAll(levels []model.Level) []model.Level {
	if len(levels) == 0 {
		return nil
	}
	out := make([]model.Level, len(levels))
	for i, l := range levels {
		out[i] = l.Clone()
	}
	return out
}
