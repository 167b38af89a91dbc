// Package command implements the editor's terminal panel: a closed set of
// shell-like commands over the document service. There is no expression
// evaluation; input that is not a known command is answered with a
// "command not found" line, never an error.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mbreeze/inkwell/internal/apperr"
	"github.com/mbreeze/inkwell/internal/docservice"
	"github.com/mbreeze/inkwell/internal/plaintext"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const listLimit = 50

const helpText = `Available commands:
  help            show this help
  ls              list documents
  cat <id>        print a document's plain text
  wc <id>         word and character counts
  md <id>         print a document as markdown
  rm <id>         delete a document
  recent          recently opened documents
  echo <text>     print text
  clear           clear the terminal
  version         show version`

// Result is the outcome of one interpreted line.
type Result struct {
	Output string `json:"output"`
	Clear  bool   `json:"clear,omitempty"`
}

// Interpreter executes terminal commands against the document service.
type Interpreter struct {
	svc *docservice.Service
}

// NewInterpreter creates an interpreter backed by svc.
func NewInterpreter(svc *docservice.Service) *Interpreter {
	return &Interpreter{svc: svc}
}

// Run interprets one input line. It never returns an error to the caller:
// every failure becomes an output line.
func (i *Interpreter) Run(ctx context.Context, line string) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "help":
		return Result{Output: helpText}
	case "ls":
		return i.ls(ctx)
	case "cat":
		return i.cat(ctx, args)
	case "wc":
		return i.wc(ctx, args)
	case "md":
		return i.md(ctx, args)
	case "rm":
		return i.rm(ctx, args)
	case "recent":
		return i.recent(ctx)
	case "echo":
		return Result{Output: strings.Join(args, " ")}
	case "clear":
		return Result{Clear: true}
	case "version":
		return Result{Output: "inkwell " + Version}
	default:
		return Result{Output: name + ": command not found"}
	}
}

func (i *Interpreter) ls(ctx context.Context) Result {
	items, total, err := i.svc.ListDocuments(ctx, listLimit, 0, "", "title")
	if err != nil {
		return Result{Output: "ls: " + err.Error()}
	}
	if total == 0 {
		return Result{Output: "no documents"}
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s  %-10s %s\n", it.ID, it.Category, it.Title)
	}
	fmt.Fprintf(&b, "%d document(s)", total)
	return Result{Output: b.String()}
}

func (i *Interpreter) cat(ctx context.Context, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "usage: cat <id>"}
	}
	doc, err := i.svc.GetDocument(ctx, args[0])
	if err != nil {
		return docError("cat", args[0], err)
	}
	return Result{Output: plaintext.Strip(doc.Content)}
}

func (i *Interpreter) wc(ctx context.Context, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "usage: wc <id>"}
	}
	stats, err := i.svc.DocumentStats(ctx, args[0])
	if err != nil {
		return docError("wc", args[0], err)
	}
	return Result{Output: fmt.Sprintf("%d words, %d characters", stats.WordCount, stats.CharCount)}
}

func (i *Interpreter) md(ctx context.Context, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "usage: md <id>"}
	}
	md, err := i.svc.ExportMarkdown(ctx, args[0])
	if err != nil {
		return docError("md", args[0], err)
	}
	return Result{Output: md}
}

func (i *Interpreter) rm(ctx context.Context, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "usage: rm <id>"}
	}
	if err := i.svc.DeleteDocument(ctx, args[0]); err != nil {
		return docError("rm", args[0], err)
	}
	return Result{Output: "deleted " + args[0]}
}

func (i *Interpreter) recent(ctx context.Context) Result {
	items := i.svc.Recent(ctx)
	if len(items) == 0 {
		return Result{Output: "no recent documents"}
	}
	var b strings.Builder
	for n, it := range items {
		if n > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s", it.ID, it.Title)
	}
	return Result{Output: b.String()}
}

func docError(cmd, id string, err error) Result {
	if errors.Is(err, apperr.ErrNotFound) {
		return Result{Output: cmd + ": " + id + ": no such document"}
	}
	return Result{Output: cmd + ": " + err.Error()}
}
