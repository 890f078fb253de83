// Package seed supplies the mock menu, user, and todo data the portal starts
// with.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/navigation"
)

//go:embed menu.yaml
var menuYAML []byte

//go:embed users.yaml
var usersYAML []byte

//go:embed todos.yaml
var todosYAML []byte

// UserSeed is a demo account with a plaintext password.
type UserSeed struct {
	ID       string      `yaml:"id"`
	Username string      `yaml:"username"`
	Name     string      `yaml:"name"`
	Role     domain.Role `yaml:"role"`
	Password string      `yaml:"password"`
}

type todoSeed struct {
	ID           string        `yaml:"id"`
	Title        string        `yaml:"title"`
	Tag          string        `yaml:"tag"`
	ComponentKey string        `yaml:"component_key"`
	Roles        []domain.Role `yaml:"roles"`
	Status       string        `yaml:"status"`
}

// Menu parses the menu tree from path, or the embedded default when path is
// empty.
func Menu(path string) ([]*navigation.MenuNode, error) {
	data := menuYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read menu %s: %w", path, err)
		}
		data = raw
	}
	return ParseMenu(data)
}

// ParseMenu decodes a YAML menu tree.
func ParseMenu(data []byte) ([]*navigation.MenuNode, error) {
	var nodes []*navigation.MenuNode
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	return nodes, nil
}

// Users returns the demo accounts.
func Users() ([]UserSeed, error) {
	var users []UserSeed
	if err := yaml.Unmarshal(usersYAML, &users); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	for _, u := range users {
		if !u.Role.Valid() {
			return nil, fmt.Errorf("user %s: unknown role %q", u.Username, u.Role)
		}
	}
	return users, nil
}

// TodoProvider serves the seeded, role-independent todo records.
type TodoProvider struct {
	items []domain.TodoItem
}

// NewTodoProvider parses the embedded todo seed.
func NewTodoProvider() (*TodoProvider, error) {
	return parseTodos(todosYAML)
}

func parseTodos(data []byte) (*TodoProvider, error) {
	var raw []todoSeed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse todos: %w", err)
	}
	items := make([]domain.TodoItem, 0, len(raw))
	for _, r := range raw {
		status := domain.TodoStatus(r.Status)
		if status == "" {
			status = domain.TodoStatusPending
		}
		items = append(items, domain.TodoItem{
			ID:           r.ID,
			Title:        r.Title,
			Tag:          r.Tag,
			ComponentKey: r.ComponentKey,
			Roles:        r.Roles,
			Status:       status,
		})
	}
	return &TodoProvider{items: items}, nil
}

// Fetch returns the seeded items addressed to role, or all of them when role
// is empty.
func (p *TodoProvider) Fetch(role domain.Role) []domain.TodoItem {
	out := make([]domain.TodoItem, 0, len(p.items))
	for _, item := range p.items {
		if role != "" && !item.HasRole(role) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Pages maps routed paths to the view that renders them.
func Pages() map[string]string {
	return map[string]string{
		"/dashboard":         "Dashboard",
		"/tasks":             "TaskCenter",
		"/quality/abnormal":  "AbnormalList",
		"/quality/standards": "StandardList",
		"/production/entry":  "ProductionEntry",
	}
}
