package modal

import "fmt"

// Shell is the generic modal frame drawn around wrapped units.
type Shell struct {
	Title      string `json:"title"`
	Closable   bool   `json:"closable"`
	ScrollBody bool   `json:"scroll_body"`
}

// Props are handed to every mounted unit.
type Props struct {
	Data   any
	Close  func()
	Update func(any)
}

// Mounted is the host's rendering decision for a request.
type Mounted struct {
	Mode  RenderMode
	Unit  Unit
	Shell *Shell
	Props Props
}

// Mount decides how to present req. Native units get no shell; wrapped units
// get the generic one. It reports false for requests with no unit, which the
// host ignores.
func Mount(req OpenRequest, close func(), update func(any)) (Mounted, bool) {
	if req.Unit == nil {
		return Mounted{}, false
	}
	m := Mounted{
		Mode:  req.Mode,
		Unit:  *req.Unit,
		Props: Props{Data: req.Data, Close: close, Update: update},
	}
	switch req.Mode {
	case Native:
	case Wrapped:
		m.Shell = &Shell{Title: req.Unit.Title, Closable: true, ScrollBody: true}
	default:
		panic(fmt.Sprintf("modal: unknown render mode %d", int(req.Mode)))
	}
	return m, true
}
