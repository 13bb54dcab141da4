package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"infinitism/internal/app"
	"infinitism/internal/config"
	"infinitism/internal/service/export"
	"infinitism/internal/service/view"
)

const replHelp = `Commands:
  tree                      outline with node ids
  stats                     node count and depth
  edit <node-id>            start editing a node
  set <text>                confirm the edit with new text
  cancel | blur             leave editing without saving
  zoom in|out|reset         change the zoom
  pan <dx> <dy>             move the diagram
  view                      show the viewport
  sidebar                   toggle the sidebar
  export pdf|png|svg [path] write an export
  help | quit`

// repl drives one viewer session from line-based input.
type repl struct {
	ctx      context.Context
	app      *app.App
	session  *view.Session
	scanner  *bufio.Scanner
	out      io.Writer
	exportTo func(ctx context.Context, exporter *export.Exporter, id string, format export.Format, path string) error
}

func newREPL(ctx context.Context, a *app.App, mindmapID string, scanner *bufio.Scanner, out io.Writer) (*repl, error) {
	s, err := a.Views.Open(ctx, config.LocalUserID, mindmapID, 0, 0)
	if err != nil {
		return nil, err
	}
	return &repl{
		ctx:      ctx,
		app:      a,
		session:  s,
		scanner:  scanner,
		out:      out,
		exportTo: exportTo,
	}, nil
}

func (r *repl) printf(color, format string, args ...any) {
	fmt.Fprintf(r.out, color+format+colorReset+"\n", args...)
}

func (r *repl) run() {
	r.printf(colorCyan, "viewer session %s (type help)", r.session.ID())
	for {
		fmt.Fprintf(r.out, "[%s]> ", r.session.Snapshot().Mode)
		if !r.scanner.Scan() {
			fmt.Fprintln(r.out)
			return
		}
		if !r.exec(strings.TrimSpace(r.scanner.Text())) {
			return
		}
	}
}

// exec runs one command line and reports whether the loop continues.
func (r *repl) exec(line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	var err error
	switch strings.ToLower(cmd) {
	case "":
	case "help":
		fmt.Fprintln(r.out, replHelp)
	case "quit", "exit":
		_ = r.app.Views.Close(config.LocalUserID, r.session.ID())
		r.printf(colorGreen, "✓ Goodbye!")
		return false
	case "tree":
		err = r.tree()
	case "stats":
		err = r.stats()
	case "edit":
		var draft string
		if draft, err = r.session.BeginEdit(r.ctx, rest); err == nil {
			r.printf(colorBlue, "editing %s: %q", rest, draft)
		}
	case "set":
		if _, err = r.session.Confirm(r.ctx, rest); err == nil {
			r.printf(colorGreen, "✓ saved")
		}
	case "cancel":
		err = r.session.Cancel()
	case "blur":
		err = r.session.Blur()
	case "zoom":
		err = r.zoom(args)
	case "pan":
		err = r.pan(args)
	case "view":
		vp := r.session.Snapshot().Viewport
		r.printf(colorBlue, "scale %.2f at (%.0f, %.0f)", vp.Scale, vp.X, vp.Y)
	case "sidebar":
		if r.session.ToggleSidebar() {
			r.printf(colorBlue, "sidebar open")
		} else {
			r.printf(colorBlue, "sidebar closed")
		}
	case "export":
		err = r.export(args)
	default:
		r.printf(colorYellow, "⚠ unknown command %q (type help)", cmd)
	}

	if err != nil {
		r.printf(colorRed, "❌ %v", err)
	}
	return true
}

func (r *repl) tree() error {
	m, err := r.session.Mindmap(r.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, export.Outline(m.Data, true))
	return nil
}

func (r *repl) stats() error {
	stats, err := r.session.Stats(r.ctx)
	if err != nil {
		return err
	}
	r.printf(colorBlue, "nodes: %d  depth: %d", stats.NodeCount, stats.Depth)
	return nil
}

func (r *repl) zoom(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: zoom in|out|reset")
	}
	switch args[0] {
	case "in":
		r.session.ZoomIn(view.DefaultZoomStep)
	case "out":
		r.session.ZoomOut(view.DefaultZoomStep)
	case "reset":
		r.session.ResetView()
	default:
		return fmt.Errorf("usage: zoom in|out|reset")
	}
	r.printf(colorBlue, "scale %.2f", r.session.Snapshot().Viewport.Scale)
	return nil
}

func (r *repl) pan(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pan <dx> <dy>")
	}
	dx, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid dx: %w", err)
	}
	dy, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid dy: %w", err)
	}
	r.session.Pan(dx, dy)
	return nil
}

func (r *repl) export(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: export pdf|png|svg [path]")
	}
	format := export.Format(args[0])
	switch format {
	case export.FormatPDF, export.FormatPNG, export.FormatSVG:
	default:
		return fmt.Errorf("unsupported export format: %s", args[0])
	}

	path := ""
	if len(args) == 2 {
		path = args[1]
	}
	if err := r.exportTo(r.ctx, r.app.Exporter, r.session.MindmapID(), format, path); err != nil {
		return err
	}
	r.printf(colorGreen, "✓ exported %s", format)
	return nil
}
