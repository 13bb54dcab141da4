package export

import (
	"strings"

	"infinitism/internal/domain/models/mindmap"
)

// outlineLine is one row of the rendered outline.
type outlineLine struct {
	Label  string
	Depth  int
	IsLast bool   // last child of its parent
	Suffix string // pre-rendered annotation, e.g. "[main-0]"
}

// Outline renders the mind map as an indented ASCII tree in model order.
// With showIDs set, every non-root line carries the node id for editing.
//
//	Cell Biology
//	├── Membrane [main-0]
//	│   └── Lipids [sub-0-0]
//	└── Nucleus [main-1]
func Outline(data mindmap.Data, showIDs bool) string {
	lines := []outlineLine{{Label: data.Title}}

	for i, main := range data.Nodes {
		lines = append(lines, outlineLine{
			Label:  main.Text,
			Depth:  1,
			IsLast: i == len(data.Nodes)-1,
			Suffix: idSuffix(main.ID, showIDs),
		})
		for j, sub := range main.Children {
			lines = append(lines, outlineLine{
				Label:  sub.Text,
				Depth:  2,
				IsLast: j == len(main.Children)-1,
				Suffix: idSuffix(sub.ID, showIDs),
			})
		}
	}

	return renderOutline(lines)
}

func idSuffix(id string, show bool) string {
	if !show || id == "" {
		return ""
	}
	return "[" + id + "]"
}

func renderOutline(lines []outlineLine) string {
	var out strings.Builder

	// depths that still have siblings further down
	open := make(map[int]bool)

	for i, line := range lines {
		out.WriteString(branchPrefix(line.Depth, line.IsLast, open))
		out.WriteString(line.Label)
		if line.Suffix != "" {
			out.WriteString(" ")
			out.WriteString(line.Suffix)
		}
		if i < len(lines)-1 {
			out.WriteString("\n")
		}

		if line.IsLast {
			delete(open, line.Depth)
		} else {
			open[line.Depth] = true
		}
	}

	return out.String()
}

func branchPrefix(depth int, isLast bool, open map[int]bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for d := 1; d < depth; d++ {
		if open[d] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}
	if isLast {
		prefix.WriteString("└── ")
	} else {
		prefix.WriteString("├── ")
	}
	return prefix.String()
}
