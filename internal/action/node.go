package action

// Tag names an action carried by an element of the card.
type Tag string

const (
	TagMoreInfo Tag = "more-info"
	TagName     Tag = "name"
	TagOn       Tag = "on"
	TagOff      Tag = "off"
	// TagRow marks a row container. It is not an executable action.
	TagRow Tag = "row"
)

// Rect is a screen region in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Node is an element of the rendered card. The renderer rebuilds the tree on
// every frame; children always lie inside their parent.
type Node struct {
	Tag      Tag
	Name     string // Debug label, e.g. "row[2]/on/label"
	Index    int    // Row index for row-scoped nodes, -1 otherwise
	Rect     Rect
	Parent   *Node
	Children []*Node
}

// NewRoot creates a parentless node covering r.
func NewRoot(name string, r Rect) *Node {
	return &Node{Name: name, Index: -1, Rect: r}
}

// Append creates a child node and returns it.
func (n *Node) Append(tag Tag, name string, r Rect) *Node {
	child := &Node{Tag: tag, Name: name, Index: n.Index, Rect: r, Parent: n}
	n.Children = append(n.Children, child)
	return child
}

// WithIndex sets the row index on n and returns it.
func (n *Node) WithIndex(i int) *Node {
	n.Index = i
	return n
}

// Closest returns n or its nearest ancestor carrying a tag.
func (n *Node) Closest() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Tag != "" {
			return cur
		}
	}
	return nil
}

// Path returns n followed by its ancestors, innermost first.
func (n *Node) Path() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	return path
}

// HitTest returns the deepest node containing (x, y), or nil.
// Later siblings win over earlier ones, like painting order.
func (n *Node) HitTest(x, y int) *Node {
	if n == nil || !n.Rect.Contains(x, y) {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := n.Children[i].HitTest(x, y); hit != nil {
			return hit
		}
	}
	return n
}

// Find returns the first node (depth-first) matching tag within row index.
func (n *Node) Find(tag Tag, index int) *Node {
	if n == nil {
		return nil
	}
	if n.Tag == tag && n.Index == index {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(tag, index); found != nil {
			return found
		}
	}
	return nil
}
