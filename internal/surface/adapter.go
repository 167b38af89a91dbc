package surface

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/mbreeze/inkwell/internal/apperr"
	"github.com/mbreeze/inkwell/internal/htmlmd"
)

const (
	kindContent = "content"
	kindText    = "text"
)

type getRequest struct {
	kind  string
	reply chan string
}

// ChangeFunc receives every host-initiated edit. The HTML argument has the
// startup placeholder already stripped.
type ChangeFunc func(html, text string)

// Adapter mediates between the session controller and the render host.
//
// Concurrency model follows the event broker: a single internal goroutine
// owns all mutable state (readiness, the queued setContent, outstanding
// request queues) and public methods talk to it through channels. Outbound
// commands appear on Commands(); the host feeds events back via Deliver.
//
// Before the host reports ready, setContent payloads are held back and only
// the most recent one survives; the first ready event flushes it exactly
// once. Responses carry no correlation ids, so at most the oldest
// outstanding request of each kind is on the wire at a time and replies are
// matched to requesters in FIFO order per kind.
type Adapter struct {
	commands chan Command
	events   chan Event

	setCh   chan string
	fireCh  chan Command
	reqCh   chan getRequest
	readyCh chan chan bool

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	onChange ChangeFunc
	logger   *slog.Logger
}

// NewAdapter starts the adapter loop. onChange may be nil.
func NewAdapter(logger *slog.Logger, onChange ChangeFunc) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		commands: make(chan Command, 64),
		events:   make(chan Event, 64),
		setCh:    make(chan string),
		fireCh:   make(chan Command),
		reqCh:    make(chan getRequest),
		readyCh:  make(chan chan bool),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		onChange: onChange,
		logger:   logger,
	}

	go a.run()
	return a
}

func (a *Adapter) run() {
	defer close(a.stopped)

	ready := false
	havePending := false
	pending := ""
	waiters := map[string][]chan string{}

	send := func(cmd Command) {
		select {
		case a.commands <- cmd:
		default:
			a.logger.Warn("render host command buffer full, dropping", "command", cmd.Name)
		}
	}

	cmdFor := func(kind string) Command {
		if kind == kindText {
			return Command{Name: CmdGetText}
		}
		return Command{Name: CmdGetContent}
	}

	answer := func(kind, value string) {
		q := waiters[kind]
		if len(q) == 0 {
			// Late or unsolicited response, e.g. after a caller gave up.
			return
		}
		q[0] <- value
		waiters[kind] = q[1:]
		if len(waiters[kind]) > 0 {
			send(cmdFor(kind))
		}
	}

	for {
		select {
		case <-a.stopCh:
			for _, q := range waiters {
				for _, reply := range q {
					close(reply)
				}
			}
			close(a.commands)
			return

		case html := <-a.setCh:
			if !ready {
				pending = html
				havePending = true
				continue
			}
			send(Command{Name: CmdSetContent, Value: html})

		case cmd := <-a.fireCh:
			send(cmd)

		case req := <-a.reqCh:
			waiters[req.kind] = append(waiters[req.kind], req.reply)
			if len(waiters[req.kind]) == 1 {
				send(cmdFor(req.kind))
			}

		case resp := <-a.readyCh:
			resp <- ready

		case ev := <-a.events:
			switch ev.Type {
			case EventReady:
				if ready {
					continue
				}
				ready = true
				if havePending {
					send(Command{Name: CmdSetContent, Value: pending})
					havePending = false
					pending = ""
				}

			case EventContent:
				answer(kindContent, ev.HTML)

			case EventText:
				answer(kindText, ev.Text)

			case EventContentChanged:
				if a.onChange != nil {
					a.onChange(htmlmd.StripPlaceholder(ev.HTML), ev.Text)
				}

			case EventCommandFailed:
				if ev.Command == FormatStrikethrough {
					// Some hosts only accept the all-lowercase spelling.
					send(Command{Name: CmdFormat, Format: "strikethrough"})
					continue
				}
				a.logger.Warn("render host rejected command", "command", ev.Command)
			}
		}
	}
}

// Commands returns the outbound channel the render host consumes. It is
// closed when the adapter shuts down.
func (a *Adapter) Commands() <-chan Command {
	return a.commands
}

// Deliver feeds one host event into the adapter. Events delivered after
// Close are discarded.
func (a *Adapter) Deliver(ev Event) {
	if a.closed.Load() {
		return
	}
	select {
	case a.events <- ev:
	case <-a.stopped:
	}
}

// SetContent replaces the surface content. Before the host is ready the
// payload is queued; queueing keeps only the latest payload.
func (a *Adapter) SetContent(html string) {
	if a.closed.Load() {
		return
	}
	select {
	case a.setCh <- html:
	case <-a.stopped:
	}
}

// ClearContent empties the surface; the host restores its placeholder.
func (a *Adapter) ClearContent() {
	a.fire(Command{Name: CmdClearContent})
}

// FormatText issues a rich-text command, fire and forget. Failures surface
// asynchronously as commandFailed events.
func (a *Adapter) FormatText(format, value string) {
	a.fire(Command{Name: CmdFormat, Format: format, Value: value})
}

// InsertImage inserts an image element at the caret.
func (a *Adapter) InsertImage(url, alt string) {
	a.fire(Command{Name: CmdInsertHTML, Value: imageFragment(url, alt)})
}

// CreateLink wraps the given text in an anchor at the caret.
func (a *Adapter) CreateLink(url, text string) {
	a.fire(Command{Name: CmdInsertHTML, Value: linkFragment(url, text)})
}

// InsertTable inserts an empty rows-by-cols table at the caret.
func (a *Adapter) InsertTable(rows, cols int) {
	a.fire(Command{Name: CmdInsertHTML, Value: tableFragment(rows, cols)})
}

// InsertCodeBlock inserts an empty fenced code block at the caret.
func (a *Adapter) InsertCodeBlock(language string) {
	a.fire(Command{Name: CmdInsertHTML, Value: codeBlockFragment(language)})
}

func (a *Adapter) fire(cmd Command) {
	if a.closed.Load() {
		return
	}
	select {
	case a.fireCh <- cmd:
	case <-a.stopped:
	}
}

// GetContent requests the current HTML from the host and waits for the
// reply. Concurrent calls are answered in request order.
func (a *Adapter) GetContent(ctx context.Context) (string, error) {
	return a.get(ctx, kindContent)
}

// GetText requests the current plain text from the host.
func (a *Adapter) GetText(ctx context.Context) (string, error) {
	return a.get(ctx, kindText)
}

func (a *Adapter) get(ctx context.Context, kind string) (string, error) {
	if a.closed.Load() {
		return "", apperr.ErrClosed
	}

	req := getRequest{kind: kind, reply: make(chan string, 1)}
	select {
	case a.reqCh <- req:
	case <-a.stopped:
		return "", apperr.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case v, ok := <-req.reply:
		if !ok {
			return "", apperr.ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		// The loop will drop the eventual reply into the buffered channel.
		return "", ctx.Err()
	}
}

// Ready reports whether the host has signalled readiness.
func (a *Adapter) Ready() bool {
	if a.closed.Load() {
		return false
	}

	resp := make(chan bool, 1)
	select {
	case a.readyCh <- resp:
	case <-a.stopped:
		return false
	}

	select {
	case r := <-resp:
		return r
	case <-a.stopped:
		return false
	}
}

// Close stops the loop, fails outstanding requests with ErrClosed and
// closes the command channel. Host events arriving afterwards are dropped.
func (a *Adapter) Close() {
	if a.closed.CompareAndSwap(false, true) {
		close(a.stopCh)
	}
	<-a.stopped
}
