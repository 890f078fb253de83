package navigation

// MenuNode is one node of the portal menu tree. Sections nest through any of
// Groups, Items, or Children.
type MenuNode struct {
	ID       string      `yaml:"id" json:"id,omitempty"`
	Path     string      `yaml:"path" json:"path,omitempty"`
	Label    string      `yaml:"label" json:"label,omitempty"`
	Title    string      `yaml:"title" json:"title,omitempty"`
	Groups   []*MenuNode `yaml:"groups" json:"groups,omitempty"`
	Items    []*MenuNode `yaml:"items" json:"items,omitempty"`
	Children []*MenuNode `yaml:"children" json:"children,omitempty"`
}

// DisplayName prefers Label over Title.
func (n *MenuNode) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Title
}

const maxMenuDepth = 16

// FindTitle walks the tree looking for path. Nil nodes and anything deeper
// than maxMenuDepth are skipped.
func FindTitle(nodes []*MenuNode, path string) (string, bool) {
	return findTitle(nodes, path, 0)
}

func findTitle(nodes []*MenuNode, path string, depth int) (string, bool) {
	if depth > maxMenuDepth {
		return "", false
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.Path == path && node.DisplayName() != "" {
			return node.DisplayName(), true
		}
		for _, nested := range [][]*MenuNode{node.Groups, node.Items, node.Children} {
			if title, ok := findTitle(nested, path, depth+1); ok {
				return title, true
			}
		}
	}
	return "", false
}

// FindByID returns the node with the given id.
func FindByID(nodes []*MenuNode, id string) (*MenuNode, bool) {
	return findByID(nodes, id, 0)
}

func findByID(nodes []*MenuNode, id string, depth int) (*MenuNode, bool) {
	if depth > maxMenuDepth || id == "" {
		return nil, false
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.ID == id {
			return node, true
		}
		for _, nested := range [][]*MenuNode{node.Groups, node.Items, node.Children} {
			if found, ok := findByID(nested, id, depth+1); ok {
				return found, true
			}
		}
	}
	return nil, false
}
