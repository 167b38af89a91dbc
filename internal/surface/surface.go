// Package surface is the boundary to the interactive render host: the
// component (a webview in the shipped shell) that displays and edits rich
// HTML. The adapter and the host exchange messages over two channels — a
// command channel (adapter to host) and an event channel (host to
// adapter) — so no shared memory or callback threading crosses the
// boundary.
package surface

// Command names the adapter sends to the host.
const (
	CmdSetContent   = "setContent"
	CmdGetContent   = "getContent"
	CmdGetText      = "getText"
	CmdClearContent = "clearContent"
	CmdFormat       = "format"
	CmdInsertHTML   = "insertHTML"
)

// Command is one message on the adapter-to-host channel.
type Command struct {
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`  // HTML payload, fragment, or format argument
	Format string `json:"format,omitempty"` // rich-text command name, CmdFormat only
}

// Event types the host sends back.
const (
	// EventReady signals the editing surface finished initializing.
	// The first one releases any queued setContent; repeats are no-ops.
	EventReady = "ready"
	// EventContent answers the sole outstanding getContent request.
	EventContent = "content"
	// EventText answers the sole outstanding getText request.
	EventText = "text"
	// EventContentChanged is host-initiated after every user-visible edit,
	// including the follow-up to fire-and-forget format/insert commands.
	EventContentChanged = "contentChanged"
	// EventCommandFailed reports a rich-text command the host rejected.
	EventCommandFailed = "commandFailed"
)

// Event is one message on the host-to-adapter channel.
type Event struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
	Command string `json:"command,omitempty"` // rejected command name, EventCommandFailed only
}

// Rich-text format commands understood by the host.
const (
	FormatBold          = "bold"
	FormatItalic        = "italic"
	FormatUnderline     = "underline"
	FormatStrikethrough = "strikeThrough"
	FormatHeading       = "formatBlock"
	FormatOrderedList   = "insertOrderedList"
	FormatUnorderedList = "insertUnorderedList"
	FormatAlign         = "justify"
	FormatUndo          = "undo"
	FormatRedo          = "redo"
	FormatRemove        = "removeFormat"
)
