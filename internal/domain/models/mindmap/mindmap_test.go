package mindmap

import "testing"

func sampleData() Data {
	return Data{
		Title: "Biology",
		Nodes: []Node{
			{ID: "main-0", Text: "Cells", Level: 1, Children: []Node{
				{ID: "sub-0-0", Text: "Membrane", Level: 2, Children: []Node{}},
				{ID: "sub-0-1", Text: "Nucleus", Level: 2, Children: []Node{}},
			}},
			{ID: "main-1", Text: "Genetics", Level: 1, Children: []Node{
				{ID: "sub-1-0", Text: "DNA", Level: 2, Children: []Node{}},
			}},
		},
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		name      string
		data      Data
		wantCount int
		wantDepth int
	}{
		{name: "empty map", data: Data{Title: "x"}, wantCount: 1, wantDepth: 0},
		{name: "main topics only", data: Data{Nodes: []Node{{ID: "a"}, {ID: "b"}}}, wantCount: 3, wantDepth: 1},
		{name: "two levels", data: sampleData(), wantCount: 6, wantDepth: 2},
		{
			name: "deeper tree",
			data: Data{Nodes: []Node{{ID: "a", Children: []Node{{ID: "b", Children: []Node{{ID: "c"}}}}}}},
			wantCount: 4,
			wantDepth: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.data.Stats()
			if s.NodeCount != tt.wantCount {
				t.Errorf("NodeCount = %d, want %d", s.NodeCount, tt.wantCount)
			}
			if s.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", s.Depth, tt.wantDepth)
			}
		})
	}
}

func TestSetNodeText(t *testing.T) {
	t.Run("replaces only text", func(t *testing.T) {
		d := sampleData()
		before := d.Nodes[0].Children[1]

		if !d.SetNodeText("sub-0-1", "Nucleolus") {
			t.Fatal("SetNodeText() = false, want true")
		}

		after := d.Nodes[0].Children[1]
		if after.Text != "Nucleolus" {
			t.Errorf("Text = %q", after.Text)
		}
		if after.ID != before.ID || after.Level != before.Level || after.Color != before.Color {
			t.Errorf("other attributes changed: %+v", after)
		}
	})

	t.Run("unknown id leaves tree untouched", func(t *testing.T) {
		d := sampleData()
		if d.SetNodeText("sub-9-9", "x") {
			t.Fatal("SetNodeText() = true, want false")
		}
		if d.Nodes[0].Text != "Cells" || d.Nodes[1].Children[0].Text != "DNA" {
			t.Error("tree was modified")
		}
	})

	t.Run("first depth-first match wins", func(t *testing.T) {
		d := Data{Nodes: []Node{
			{ID: "a", Children: []Node{{ID: "dup", Text: "first"}}},
			{ID: "dup", Text: "second"},
		}}
		d.SetNodeText("dup", "changed")
		if d.Nodes[0].Children[0].Text != "changed" {
			t.Error("nested earlier match should be updated")
		}
		if d.Nodes[1].Text != "second" {
			t.Error("later match should be untouched")
		}
	})
}

func TestClone(t *testing.T) {
	d := sampleData()
	c := d.Clone()
	c.SetNodeText("sub-1-0", "RNA")
	c.Nodes[0].Children = append(c.Nodes[0].Children, Node{ID: "extra"})

	if d.Nodes[1].Children[0].Text != "DNA" {
		t.Error("clone shares nodes with original")
	}
	if len(d.Nodes[0].Children) != 2 {
		t.Error("clone shares children slice with original")
	}
}
