// Package navigation tracks the active hash route, its page title, and the
// breadcrumb stack.
package navigation

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	// HomePath is used when the fragment is empty.
	HomePath = "/dashboard"
	// ConstructionView is rendered for paths no page handles.
	ConstructionView = "construction"
	constructionTitle = "功能建设中"
)

// Crumb is one breadcrumb entry.
type Crumb struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Target is where to navigate. ID is set when jumping from a menu section.
type Target struct {
	Path string
	ID   string
}

// Options tune a single navigate call.
type Options struct {
	Referrer  *Crumb
	KeepStack bool
}

// State is a snapshot of the coordinator.
type State struct {
	Path        string  `json:"path"`
	Page        string  `json:"page"`
	View        string  `json:"view"`
	MenuID      string  `json:"menu_id,omitempty"`
	Breadcrumbs []Crumb `json:"breadcrumbs"`
}

// Coordinator is the hash router. Pages maps routable paths to their view
// key; menu supplies human titles.
type Coordinator struct {
	mu     sync.Mutex
	menu   []*MenuNode
	pages  map[string]string
	state  State
	logger *zap.Logger
}

// NewCoordinator starts at HomePath.
func NewCoordinator(menu []*MenuNode, pages map[string]string, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		menu:   menu,
		pages:  make(map[string]string, len(pages)),
		logger: logger,
	}
	for path, view := range pages {
		c.pages[path] = view
	}
	c.state.Page = "工作台"
	c.setPathLocked(HomePath)
	return c
}

// Navigate jumps to target. A referrer is pushed unless it repeats the last
// crumb; without a referrer the stack is cleared unless KeepStack is set.
func (c *Coordinator) Navigate(target Target, opts Options) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := normalizePath(target.Path)
	if path == "" && target.ID != "" {
		if node, ok := FindByID(c.menu, target.ID); ok {
			path = normalizePath(node.Path)
		}
	}
	if path == "" {
		path = HomePath
	}
	if target.ID != "" {
		c.state.MenuID = target.ID
	}

	switch {
	case opts.Referrer != nil:
		ref := *opts.Referrer
		ref.Path = normalizePath(ref.Path)
		last := len(c.state.Breadcrumbs) - 1
		if last < 0 || c.state.Breadcrumbs[last].Path != ref.Path {
			c.state.Breadcrumbs = append(c.state.Breadcrumbs, ref)
		}
	case !opts.KeepStack:
		c.state.Breadcrumbs = nil
	}

	c.setPathLocked(path)
	return c.snapshotLocked()
}

// SyncFromHash follows a URL fragment change such as "#/quality/abnormal".
// The breadcrumb stack is untouched.
func (c *Coordinator) SyncFromHash(fragment string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := normalizePath(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
	if path == "" {
		path = HomePath
	}
	c.setPathLocked(path)
	return c.snapshotLocked()
}

// Back pops the last breadcrumb and navigates to it.
func (c *Coordinator) Back() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	last := len(c.state.Breadcrumbs) - 1
	if last < 0 {
		return c.snapshotLocked(), false
	}
	crumb := c.state.Breadcrumbs[last]
	c.state.Breadcrumbs = c.state.Breadcrumbs[:last]
	c.setPathLocked(crumb.Path)
	return c.snapshotLocked(), true
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Menu returns the menu tree.
func (c *Coordinator) Menu() []*MenuNode {
	return c.menu
}

func (c *Coordinator) setPathLocked(path string) {
	c.state.Path = path
	view, known := c.pages[path]
	title, titled := FindTitle(c.menu, path)
	switch {
	case known:
		c.state.View = view
		if titled {
			c.state.Page = title
		}
	case titled:
		c.state.View = path
		c.state.Page = title
	default:
		c.logger.Debug("unknown route", zap.String("path", path))
		c.state.View = ConstructionView
		c.state.Page = constructionTitle
	}
}

func (c *Coordinator) snapshotLocked() State {
	out := c.state
	out.Breadcrumbs = append([]Crumb{}, c.state.Breadcrumbs...)
	return out
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
