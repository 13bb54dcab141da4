package mindmap

import "time"

// Node is one labelled box of a mind map. Children are owned exclusively by
// their parent, so the structure is always a strict tree.
type Node struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Description string  `json:"description,omitempty"`
	Children    []Node  `json:"children"`
	X           float64 `json:"x"` // advisory, ignored by layout
	Y           float64 `json:"y"` // advisory, ignored by layout
	Color       string  `json:"color"`
	Level       int     `json:"level"`
}

// Data is the mind map model: a title plus its main topics.
type Data struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
}

// Stats is derived from Data on every read and never stored.
type Stats struct {
	NodeCount int `json:"node_count"`
	Depth     int `json:"depth"`
}

// Generation source values
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Generation records how the topic set behind a mind map was produced.
type Generation struct {
	Source         string `json:"source"`
	Model          string `json:"model,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Mindmap is the stored document wrapping Data.
type Mindmap struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Data       Data       `json:"data"`
	Generation Generation `json:"generation"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summary is the list view of a stored mind map.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	return Data{Title: d.Title, Nodes: cloneNodes(d.Nodes)}
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}

// Clone returns a deep copy of the document.
func (m *Mindmap) Clone() *Mindmap {
	c := *m
	c.Data = m.Data.Clone()
	return &c
}

// Summary builds the list view of the document.
func (m *Mindmap) Summary() Summary {
	return Summary{
		ID:        m.ID,
		Title:     m.Data.Title,
		Source:    m.Generation.Source,
		NodeCount: m.Data.Stats().NodeCount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Walk visits every node depth-first in document order. Main topics have depth 1.
// Returning false from fn stops the walk.
func (d *Data) Walk(fn func(n *Node, depth int) bool) {
	walkNodes(d.Nodes, 1, fn)
}

func walkNodes(nodes []Node, depth int, fn func(*Node, int) bool) bool {
	for i := range nodes {
		if !fn(&nodes[i], depth) {
			return false
		}
		if !walkNodes(nodes[i].Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// FindNode returns the first node with the given id in depth-first order.
func (d *Data) FindNode(id string) (*Node, bool) {
	var found *Node
	d.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// SetNodeText replaces the text of the first node matching id. Every other
// attribute is left untouched. Reports false when no node matches.
func (d *Data) SetNodeText(id, text string) bool {
	n, ok := d.FindNode(id)
	if !ok {
		return false
	}
	n.Text = text
	return true
}

// Stats counts the title as one node. Depth is 0 for a map without topics.
func (d *Data) Stats() Stats {
	s := Stats{NodeCount: 1}
	d.Walk(func(_ *Node, depth int) bool {
		s.NodeCount++
		if depth > s.Depth {
			s.Depth = depth
		}
		return true
	})
	return s
}
