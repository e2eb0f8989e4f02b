package ws

import "github.com/gosuda/trackly/internal/activity"

// Client message types.
const (
	MsgFilter = "filter" // replace the filter, back to page 1
	MsgReset  = "reset"  // clear the filter
	MsgPage   = "page"   // jump to Page
	MsgNext   = "next"
	MsgPrev   = "prev"
)

// Server message types.
const (
	MsgRender = "render"
	MsgError  = "error"
)

// ClientMessage drives the view from the browser.
type ClientMessage struct {
	Type   string          `json:"type"`
	Filter activity.Filter `json:"filter"`
	Page   int             `json:"page,omitempty"`
}

// ServerMessage is either a full rendered frame or a protocol error. A
// protocol error leaves the view unchanged.
type ServerMessage struct {
	Type  string             `json:"type"`
	View  *activity.Rendered `json:"view,omitempty"`
	Error string             `json:"error,omitempty"`
}
