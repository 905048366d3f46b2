// Package gallery prepares and tracks the state a full-screen image viewer
// component consumes.  A Viewer is single-writer (UI-event-driven) and not
// safe for concurrent use.
package gallery

import (
	apperrors "github.com/pixelforge/imagekit/errors"
	"github.com/pixelforge/imagekit/validate"
)

// Item is one viewable image with optional presentation metadata.
type Item struct {
	URI         string
	Title       string
	Description string
	Width       int
	Height      int
}

// Options tune viewer behaviour.  Nil fields inherit the previously stored
// value; per-call options shallow-merge over them, last write wins.
type Options struct {
	SwipeToClose    *bool
	ShowPageIndex   *bool
	BackgroundColor *string
}

// Config is the prepared prop set handed to the viewer component.
type Config struct {
	Images     []Item
	ImageIndex int
	Visible    bool

	SwipeToClose    bool
	ShowPageIndex   bool
	BackgroundColor string
}

// Viewer owns the open/closed state, the item list, and the current index.
type Viewer struct {
	items   []Item
	index   int
	visible bool

	swipeToClose    bool
	showPageIndex   bool
	backgroundColor string

	onIndexChange func(index int)
	onClose       func()
}

// NewViewer creates a closed viewer with default options.
func NewViewer() *Viewer {
	return &Viewer{
		swipeToClose:    true,
		showPageIndex:   true,
		backgroundColor: "#000000",
	}
}

// OnIndexChange registers the callback fired by SetIndex.
func (v *Viewer) OnIndexChange(fn func(index int)) { v.onIndexChange = fn }

// OnClose registers the callback fired by Close.
func (v *Viewer) OnClose(fn func()) { v.onClose = fn }

// Open shows the viewer over the given items, starting at startIndex.
// Out-of-range start indexes clamp to the valid range.  opts may be nil.
func (v *Viewer) Open(items []Item, startIndex int, opts *Options) error {
	if len(items) == 0 {
		return apperrors.New(apperrors.CodeValidation, "gallery.open",
			"no items to show")
	}
	for _, it := range items {
		if err := validate.URI(it.URI); err != nil {
			return err
		}
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(items) {
		startIndex = len(items) - 1
	}
	v.items = append([]Item(nil), items...)
	v.index = startIndex
	v.visible = true
	v.merge(opts)
	return nil
}

// OpenURIs is Open over bare URIs, each normalized to an Item.
func (v *Viewer) OpenURIs(uris []string, startIndex int, opts *Options) error {
	items := make([]Item, len(uris))
	for i, uri := range uris {
		items[i] = Item{URI: uri}
	}
	return v.Open(items, startIndex, opts)
}

// Close hides the viewer and fires the close callback.  Closing an already
// closed viewer is a no-op.
func (v *Viewer) Close() {
	if !v.visible {
		return
	}
	v.visible = false
	if v.onClose != nil {
		v.onClose()
	}
}

// SetIndex moves to the given item and fires the index callback.  The
// callback fires even when the index is unchanged, so hosts can re-sync
// dependent UI.  Out-of-range indexes are rejected.
func (v *Viewer) SetIndex(index int) error {
	if index < 0 || index >= len(v.items) {
		return apperrors.Newf(apperrors.CodeValidation, "gallery.setIndex",
			"index %d out of range [0,%d)", index, len(v.items))
	}
	v.index = index
	if v.onIndexChange != nil {
		v.onIndexChange(index)
	}
	return nil
}

// Index returns the current item index.
func (v *Viewer) Index() int { return v.index }

// Visible reports whether the viewer is open.
func (v *Viewer) Visible() bool { return v.visible }

// Current returns the item under the cursor, or false when the viewer holds
// no items.
func (v *Viewer) Current() (Item, bool) {
	if len(v.items) == 0 {
		return Item{}, false
	}
	return v.items[v.index], true
}

// Config returns the prepared viewer props.
func (v *Viewer) Config() Config {
	return Config{
		Images:          append([]Item(nil), v.items...),
		ImageIndex:      v.index,
		Visible:         v.visible,
		SwipeToClose:    v.swipeToClose,
		ShowPageIndex:   v.showPageIndex,
		BackgroundColor: v.backgroundColor,
	}
}

func (v *Viewer) merge(opts *Options) {
	if opts == nil {
		return
	}
	if opts.SwipeToClose != nil {
		v.swipeToClose = *opts.SwipeToClose
	}
	if opts.ShowPageIndex != nil {
		v.showPageIndex = *opts.ShowPageIndex
	}
	if opts.BackgroundColor != nil {
		v.backgroundColor = *opts.BackgroundColor
	}
}
