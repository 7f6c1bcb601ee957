package termhost

import (
	"github.com/gdamore/tcell/v2"
)

// HandleEvent feeds one terminal event to the document. It must run on
// the engine goroutine. Returns true when the event asks to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if IsQuit(ev) {
			return true
		}
		h.handleKey(ev)

	case *tcell.EventMouse:
		h.handleMouse(ev)

	case *tcell.EventResize:
		cols, rows := ev.Size()
		h.Resize(float64(cols)*h.scaleX, float64(rows)*h.scaleY)
		h.screen.Sync()
	}
	return false
}

// IsQuit reports whether a key event asks to quit. It touches no host
// state, so the poll loop may call it directly.
func IsQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

func (h *Host) handleKey(ev *tcell.EventKey) {
	vp := h.Viewport()
	switch ev.Key() {
	case tcell.KeyDown:
		h.ScrollTo(vp.ScrollY + h.scrollStep)
	case tcell.KeyUp:
		h.ScrollTo(vp.ScrollY - h.scrollStep)
	case tcell.KeyPgDn:
		h.ScrollTo(vp.ScrollY + vp.Height)
	case tcell.KeyPgUp:
		h.ScrollTo(vp.ScrollY - vp.Height)
	case tcell.KeyHome:
		h.ScrollTo(0)
	case tcell.KeyEnd:
		h.ScrollTo(vp.ScrollHeight)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			h.ScrollTo(vp.ScrollY + h.scrollStep)
		case 'k':
			h.ScrollTo(vp.ScrollY - h.scrollStep)
		}
	}
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := h.toDocument(ev.Position())
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelDown != 0:
		h.ScrollTo(h.Viewport().ScrollY + h.scrollStep)
		return
	case buttons&tcell.WheelUp != 0:
		h.ScrollTo(h.Viewport().ScrollY - h.scrollStep)
		return
	}

	down := buttons&tcell.Button1 != 0
	if down && !h.pressed {
		h.ClickAt(x, y)
	} else {
		h.MoveTo(x, y)
	}
	h.pressed = down
}
