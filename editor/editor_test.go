package editor_test

import (
	"testing"

	"github.com/pixelforge/imagekit/editor"
	apperrors "github.com/pixelforge/imagekit/errors"
)

func newState(t *testing.T) *editor.State {
	t.Helper()
	return editor.NewState(1920, 1080, 0)
}

func brushStroke() editor.Element {
	return editor.NewStroke(editor.StrokeElement{
		Points: []editor.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
		Color:  editor.Color{R: 255, A: 255},
		Width:  4,
	})
}

func TestNewState_StartsWithBackgroundLayer(t *testing.T) {
	s := newState(t)

	layers := s.Layers()
	if len(layers) != 1 {
		t.Fatalf("layers: got %d, want 1", len(layers))
	}
	if layers[0].Name != "Background" || !layers[0].Locked || !layers[0].Visible {
		t.Errorf("background layer: %+v", layers[0])
	}
	if s.HistoryLen() != 1 || s.HistoryIndex() != 0 {
		t.Errorf("history: len=%d index=%d, want 1/0", s.HistoryLen(), s.HistoryIndex())
	}
	if s.IsDirty() {
		t.Error("fresh state should not be dirty")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("fresh state should have nothing to undo or redo")
	}
}

func TestAddLayer_CommitsHistory(t *testing.T) {
	s := newState(t)

	layer := s.AddLayer("Sketch")
	if layer.ID == "" {
		t.Error("layer ID not assigned")
	}
	if s.LayerCount() != 2 {
		t.Errorf("layers: got %d, want 2", s.LayerCount())
	}
	if s.HistoryLen() != 2 || s.HistoryIndex() != 1 {
		t.Errorf("history: len=%d index=%d, want 2/1", s.HistoryLen(), s.HistoryIndex())
	}
	if !s.IsDirty() {
		t.Error("mutation should set dirty")
	}
}

func TestUndoRedo_RestoreSnapshots(t *testing.T) {
	s := newState(t)
	layer := s.AddLayer("Sketch")
	if err := s.AddElement(layer.ID, brushStroke()); err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	if !s.Undo() {
		t.Fatal("Undo returned false with history available")
	}
	layers := s.Layers()
	if len(layers) != 2 || len(layers[1].Elements) != 0 {
		t.Errorf("after undo: %d layers, %d elements", len(layers), len(layers[1].Elements))
	}

	if !s.Undo() {
		t.Fatal("second Undo returned false")
	}
	if s.LayerCount() != 1 {
		t.Errorf("after second undo: %d layers, want 1", s.LayerCount())
	}

	if !s.Redo() {
		t.Fatal("Redo returned false")
	}
	if s.LayerCount() != 2 {
		t.Errorf("after redo: %d layers, want 2", s.LayerCount())
	}
	if !s.Redo() {
		t.Fatal("second Redo returned false")
	}
	if got := s.Layers()[1].Elements; len(got) != 1 {
		t.Errorf("after second redo: %d elements, want 1", len(got))
	}
}

func TestUndoRedo_BoundaryNoOps(t *testing.T) {
	s := newState(t)
	if s.Undo() {
		t.Error("Undo at the oldest entry should return false")
	}
	if s.Redo() {
		t.Error("Redo at the newest entry should return false")
	}
	s.AddLayer("A")
	if s.Redo() {
		t.Error("Redo with no redo branch should return false")
	}
}

func TestCommit_TruncatesRedoBranch(t *testing.T) {
	s := newState(t)
	s.AddLayer("A")
	s.AddLayer("B")
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected a redo branch after undo")
	}

	s.AddLayer("C")
	if s.CanRedo() {
		t.Error("new commit should truncate the redo branch")
	}
	names := make([]string, 0, s.LayerCount())
	for _, l := range s.Layers() {
		names = append(names, l.Name)
	}
	if len(names) != 3 || names[1] != "A" || names[2] != "C" {
		t.Errorf("layers after branch commit: %v", names)
	}
}

func TestHistory_EvictsPastLimit(t *testing.T) {
	s := editor.NewState(100, 100, 50)

	for i := 0; i < 60; i++ {
		s.AddLayer("L")
	}
	if s.HistoryLen() != 50 {
		t.Errorf("history len: got %d, want 50", s.HistoryLen())
	}
	if s.HistoryIndex() != 49 {
		t.Errorf("history index: got %d, want 49", s.HistoryIndex())
	}
	// The newest snapshot is intact: background + 60 layers.
	if s.LayerCount() != 61 {
		t.Errorf("layers: got %d, want 61", s.LayerCount())
	}
	// Only 49 undos remain once the oldest entries were evicted.
	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != 49 {
		t.Errorf("undo steps: got %d, want 49", undos)
	}
}

func TestRemoveLayer(t *testing.T) {
	s := newState(t)
	layer := s.AddLayer("Sketch")

	if err := s.RemoveLayer(layer.ID); err != nil {
		t.Fatalf("RemoveLayer: %v", err)
	}
	if s.LayerCount() != 1 {
		t.Errorf("layers: got %d, want 1", s.LayerCount())
	}
}

func TestRemoveLayer_LastLayerRejected(t *testing.T) {
	s := newState(t)
	id := s.Layers()[0].ID
	historyBefore := s.HistoryLen()

	err := s.RemoveLayer(id)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if s.LayerCount() != 1 || s.HistoryLen() != historyBefore {
		t.Error("failed removal mutated state")
	}
	if s.IsDirty() {
		t.Error("failed removal set dirty")
	}
}

func TestRemoveLayer_UnknownID(t *testing.T) {
	s := newState(t)
	s.AddLayer("A")
	if err := s.RemoveLayer("nope"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateLayer_PartialPatch(t *testing.T) {
	s := newState(t)
	layer := s.AddLayer("Sketch")

	hidden := false
	opacity := 1.7 // clamps to 1
	if err := s.UpdateLayer(layer.ID, editor.LayerPatch{
		Visible: &hidden,
		Opacity: &opacity,
	}); err != nil {
		t.Fatalf("UpdateLayer: %v", err)
	}

	got := s.Layers()[1]
	if got.Visible {
		t.Error("visible not patched")
	}
	if got.Opacity != 1 {
		t.Errorf("opacity: got %v, want clamped 1", got.Opacity)
	}
	if got.Name != "Sketch" {
		t.Errorf("nil fields must stay untouched, name became %q", got.Name)
	}
}

func TestAddElement_LockedLayerRejected(t *testing.T) {
	s := newState(t)
	background := s.Layers()[0]

	err := s.AddElement(background.ID, brushStroke())
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(s.Layers()[0].Elements) != 0 {
		t.Error("locked layer was mutated")
	}
}

func TestViewportState_NotHistoried(t *testing.T) {
	s := newState(t)
	historyBefore := s.HistoryLen()

	s.SetTool(editor.ToolText)
	s.SetZoom(2.5)
	s.SetPan(editor.Point{X: 40, Y: -10})

	if s.HistoryLen() != historyBefore {
		t.Error("viewport changes must not create history entries")
	}
	if s.Tool() != editor.ToolText {
		t.Errorf("tool: got %s", s.Tool())
	}
	if s.Zoom() != 2.5 {
		t.Errorf("zoom: got %v", s.Zoom())
	}
	if (s.Pan() != editor.Point{X: 40, Y: -10}) {
		t.Errorf("pan: got %+v", s.Pan())
	}
}

func TestSetZoom_Clamps(t *testing.T) {
	s := newState(t)
	s.SetZoom(0.01)
	if s.Zoom() != editor.MinZoom {
		t.Errorf("zoom floor: got %v, want %v", s.Zoom(), editor.MinZoom)
	}
	s.SetZoom(99)
	if s.Zoom() != editor.MaxZoom {
		t.Errorf("zoom ceiling: got %v, want %v", s.Zoom(), editor.MaxZoom)
	}
}

func TestMarkSaved(t *testing.T) {
	s := newState(t)
	s.AddLayer("A")
	s.MarkSaved()
	if s.IsDirty() {
		t.Error("MarkSaved did not clear dirty")
	}
	s.Undo()
	if !s.IsDirty() {
		t.Error("undo after save should set dirty again")
	}
}

func TestLayers_ReturnsCopies(t *testing.T) {
	s := newState(t)
	layer := s.AddLayer("Sketch")
	if err := s.AddElement(layer.ID, brushStroke()); err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	got := s.Layers()
	got[1].Name = "hacked"
	got[1].Elements[0] = editor.NewText(editor.TextElement{Text: "x"})

	fresh := s.Layers()
	if fresh[1].Name != "Sketch" {
		t.Error("caller mutated internal layer metadata")
	}
	if fresh[1].Elements[0].Kind != editor.KindStroke {
		t.Error("caller mutated internal element slice")
	}
}
