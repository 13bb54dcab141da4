package layout

// tidyNode carries the Buchheim–Walker bookkeeping for one tree node.
type tidyNode struct {
	node     *Node
	parent   *tidyNode
	children []*tidyNode

	defAncestor *tidyNode // A
	ancestor    *tidyNode // a
	thread      *tidyNode // t
	prelim      float64   // z
	mod         float64   // m
	change      float64   // c
	shift       float64   // s
	index       int       // i
}

// separation returns the minimum distance between two neighbouring nodes,
// in units of the transverse node size.
func separation(a, b *tidyNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func newTidyTree(root *Node) *tidyNode {
	var build func(n *Node, index int, parent *tidyNode) *tidyNode
	build = func(n *Node, index int, parent *tidyNode) *tidyNode {
		t := &tidyNode{node: n, parent: parent, index: index}
		t.ancestor = t
		for i, c := range n.children {
			t.children = append(t.children, build(c, i, t))
		}
		return t
	}

	sentinel := &tidyNode{}
	sentinel.ancestor = sentinel
	t := build(root, 0, sentinel)
	sentinel.children = []*tidyNode{t}
	return t
}

// tidy assigns transverse coordinates (in node-size units) to every node in
// the tree rooted at root, placing the root at zero.
func tidy(root *Node) {
	t := newTidyTree(root)

	eachAfter(t, firstWalk)
	t.parent.mod = -t.prelim
	eachBefore(t, secondWalk)
}

func eachAfter(t *tidyNode, fn func(*tidyNode)) {
	for _, c := range t.children {
		eachAfter(c, fn)
	}
	fn(t)
}

func eachBefore(t *tidyNode, fn func(*tidyNode)) {
	fn(t)
	for _, c := range t.children {
		eachBefore(c, fn)
	}
}

func firstWalk(v *tidyNode) {
	siblings := v.parent.children
	var w *tidyNode
	if v.index > 0 {
		w = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + separation(v, w)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + separation(v, w)
	}

	ancestor := v.parent.defAncestor
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.defAncestor = apportion(v, w, ancestor)
}

func secondWalk(v *tidyNode) {
	v.node.X = v.prelim + v.parent.mod
	v.mod += v.parent.mod
}

func apportion(v, w, ancestor *tidyNode) *tidyNode {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *tidyNode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *tidyNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *tidyNode) *tidyNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}
