// Package editor implements the in-app raster editor core: a layer list
// with a linear undo/redo history over layer-array snapshots, bounded by a
// ring that evicts the oldest entries.
//
// A State is single-writer (UI-event-driven) and not safe for concurrent
// use.
package editor

import (
	"time"

	"github.com/oklog/ulid/v2"

	apperrors "github.com/pixelforge/imagekit/errors"
)

// Tool identifies the active editing tool.  Tool selection is not historied.
type Tool string

const (
	ToolBrush   Tool = "brush"
	ToolShape   Tool = "shape"
	ToolText    Tool = "text"
	ToolCrop    Tool = "crop"
	ToolSticker Tool = "sticker"
	ToolPan     Tool = "pan"
)

// Zoom bounds for the viewport.
const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// DefaultHistoryLimit caps the history ring when no limit is configured.
const DefaultHistoryLimit = 50

// Layer is an ordered, independently visible and lockable collection of
// drawn elements.
type Layer struct {
	ID       string
	Name     string
	Visible  bool
	Opacity  float64 // [0,1]
	Locked   bool
	Elements []Element
}

// HistoryEntry is an immutable snapshot of the full layer list at one point
// in edit time.
type HistoryEntry struct {
	ID        string
	Timestamp time.Time
	Snapshot  []Layer
}

// LayerPatch describes a partial layer update; nil fields are left as-is.
type LayerPatch struct {
	Name    *string
	Visible *bool
	Opacity *float64
	Locked  *bool
}

// State owns the current layers and their edit history.  Immediately after
// any mutating operation, the layer list equals the snapshot at the history
// cursor.
type State struct {
	layers       []Layer
	history      []HistoryEntry
	historyIndex int
	historyLimit int

	tool   Tool
	width  int
	height int
	zoom   float64
	pan    Point
	dirty  bool
}

// NewState creates an editor State of the given surface dimensions with a
// single locked "Background" layer and an initial history entry.
// historyLimit <= 0 selects DefaultHistoryLimit.
func NewState(width, height, historyLimit int) *State {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	background := Layer{
		ID:      ulid.Make().String(),
		Name:    "Background",
		Visible: true,
		Opacity: 1,
		Locked:  true,
	}
	s := &State{
		layers:       []Layer{background},
		historyLimit: historyLimit,
		tool:         ToolBrush,
		width:        width,
		height:       height,
		zoom:         1,
	}
	s.history = []HistoryEntry{{
		ID:        ulid.Make().String(),
		Timestamp: time.Now(),
		Snapshot:  cloneLayers(s.layers),
	}}
	return s
}

// ── mutating operations ─────────────────────────────────────────────────────

// AddLayer appends a new visible, unlocked layer and commits a history entry.
func (s *State) AddLayer(name string) Layer {
	layer := Layer{
		ID:      ulid.Make().String(),
		Name:    name,
		Visible: true,
		Opacity: 1,
	}
	next := cloneLayers(s.layers)
	next = append(next, layer)
	s.commit(next)
	return layer
}

// RemoveLayer deletes the layer with the given ID.  Removing the last
// remaining layer is forbidden; on failure the state is left unchanged.
func (s *State) RemoveLayer(id string) error {
	if len(s.layers) <= 1 {
		return apperrors.New(apperrors.CodeValidation, "editor.removeLayer",
			"cannot remove the last remaining layer")
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return apperrors.Newf(apperrors.CodeValidation, "editor.removeLayer",
			"no layer with id %q", id)
	}
	next := cloneLayers(s.layers)
	next = append(next[:idx], next[idx+1:]...)
	s.commit(next)
	return nil
}

// UpdateLayer applies a partial update to the layer with the given ID and
// commits a history entry.
func (s *State) UpdateLayer(id string, patch LayerPatch) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return apperrors.Newf(apperrors.CodeValidation, "editor.updateLayer",
			"no layer with id %q", id)
	}
	next := cloneLayers(s.layers)
	l := &next[idx]
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Visible != nil {
		l.Visible = *patch.Visible
	}
	if patch.Opacity != nil {
		o := *patch.Opacity
		if o < 0 {
			o = 0
		}
		if o > 1 {
			o = 1
		}
		l.Opacity = o
	}
	if patch.Locked != nil {
		l.Locked = *patch.Locked
	}
	s.commit(next)
	return nil
}

// AddElement appends an element to the layer with the given ID and commits a
// history entry.  Locked layers reject edits.
func (s *State) AddElement(layerID string, el Element) error {
	idx := s.indexOf(layerID)
	if idx < 0 {
		return apperrors.Newf(apperrors.CodeValidation, "editor.addElement",
			"no layer with id %q", layerID)
	}
	if s.layers[idx].Locked {
		return apperrors.Newf(apperrors.CodeValidation, "editor.addElement",
			"layer %q is locked", s.layers[idx].Name)
	}
	next := cloneLayers(s.layers)
	next[idx].Elements = append(next[idx].Elements, el)
	s.commit(next)
	return nil
}

// commit is the shared mutation protocol: truncate the redo branch, append
// a snapshot entry, evict past the cap, and point the cursor at the end.
func (s *State) commit(next []Layer) {
	s.history = s.history[:s.historyIndex+1]
	s.history = append(s.history, HistoryEntry{
		ID:        ulid.Make().String(),
		Timestamp: time.Now(),
		Snapshot:  cloneLayers(next),
	})
	if len(s.history) > s.historyLimit {
		over := len(s.history) - s.historyLimit
		s.history = append([]HistoryEntry(nil), s.history[over:]...)
	}
	s.historyIndex = len(s.history) - 1
	s.layers = next
	s.dirty = true
}

// ── history navigation ──────────────────────────────────────────────────────

// Undo steps the cursor back one entry.  Returns false at the oldest entry.
func (s *State) Undo() bool {
	if s.historyIndex <= 0 {
		return false
	}
	s.historyIndex--
	s.layers = cloneLayers(s.history[s.historyIndex].Snapshot)
	s.dirty = true
	return true
}

// Redo steps the cursor forward one entry.  Returns false at the newest.
func (s *State) Redo() bool {
	if s.historyIndex >= len(s.history)-1 {
		return false
	}
	s.historyIndex++
	s.layers = cloneLayers(s.history[s.historyIndex].Snapshot)
	s.dirty = true
	return true
}

// CanUndo reports whether an older entry exists.
func (s *State) CanUndo() bool { return s.historyIndex > 0 }

// CanRedo reports whether a newer entry exists.
func (s *State) CanRedo() bool { return s.historyIndex < len(s.history)-1 }

// ── non-historied state ─────────────────────────────────────────────────────

// SetTool selects the active tool without creating a history entry.
func (s *State) SetTool(t Tool) { s.tool = t }

// SetZoom sets the viewport zoom, clamped to [MinZoom, MaxZoom].
func (s *State) SetZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	s.zoom = z
}

// SetPan sets the viewport pan offset.
func (s *State) SetPan(p Point) { s.pan = p }

// MarkSaved clears the dirty flag after the host persists the result.
func (s *State) MarkSaved() { s.dirty = false }

// ── accessors ───────────────────────────────────────────────────────────────

// Layers returns a copy of the current layer list.
func (s *State) Layers() []Layer { return cloneLayers(s.layers) }

// LayerCount returns the number of layers.
func (s *State) LayerCount() int { return len(s.layers) }

// HistoryLen returns the number of history entries currently retained.
func (s *State) HistoryLen() int { return len(s.history) }

// HistoryIndex returns the cursor position within the history.
func (s *State) HistoryIndex() int { return s.historyIndex }

// Tool returns the active tool.
func (s *State) Tool() Tool { return s.tool }

// Zoom returns the viewport zoom.
func (s *State) Zoom() float64 { return s.zoom }

// Pan returns the viewport pan offset.
func (s *State) Pan() Point { return s.pan }

// IsDirty reports whether unsaved edits exist.
func (s *State) IsDirty() bool { return s.dirty }

// Dimensions returns the editing surface size.
func (s *State) Dimensions() (width, height int) { return s.width, s.height }

func (s *State) indexOf(id string) int {
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}

// cloneLayers deep-copies the layer list so history snapshots stay immutable
// when the live layers change.
func cloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		cp := l
		if l.Elements != nil {
			cp.Elements = make([]Element, len(l.Elements))
			copy(cp.Elements, l.Elements)
		}
		out[i] = cp
	}
	return out
}
