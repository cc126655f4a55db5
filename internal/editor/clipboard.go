package editor

import (
	"lightline-cli/internal/model"
)

// ClipboardItem holds copied events together with the cursor time at the moment
// of copying, so a paste can keep their offsets from the cursor.
type ClipboardItem struct {
	CopyTime model.Time         `json:"copyTime"`
	Events   []model.TimedEvent `json:"events"`
}

type Clipboard struct {
	item *ClipboardItem
}

func (c *Clipboard) Clear() { c.item = nil }

func (c *Clipboard) Copy(item ClipboardItem) {
	item = item.clone()
	c.item = &item
}

// Paste returns a deep copy of the clipboard contents.
func (c *Clipboard) Paste() (ClipboardItem, bool) {
	if c.item == nil {
		return ClipboardItem{}, false
	}
	return c.item.clone(), true
}

func (it ClipboardItem) clone() ClipboardItem {
	out := ClipboardItem{CopyTime: it.CopyTime, Events: make([]model.TimedEvent, len(it.Events))}
	for i, e := range it.Events {
		out.Events[i] = model.TimedEvent{Time: e.Time, Event: e.Event.Clone()}
	}
	return out
}

func (c *Clipboard) Len() int {
	if c.item == nil {
		return 0
	}
	return len(c.item.Events)
}
