package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/navigation"
)

func TestEmbeddedMenu(t *testing.T) {
	menu, err := Menu("")
	require.NoError(t, err)

	title, ok := navigation.FindTitle(menu, "/quality/abnormal")
	require.True(t, ok)
	assert.Equal(t, "异常处理", title)

	node, ok := navigation.FindByID(menu, "entry")
	require.True(t, ok)
	assert.Equal(t, "/production/entry", node.Path)
}

func TestMenuFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- path: /x\n  title: X\n"), 0o600))

	menu, err := Menu(path)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "X", menu[0].DisplayName())

	_, err = Menu(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMenuRejectsGarbage(t *testing.T) {
	_, err := ParseMenu([]byte("path: [unterminated"))
	assert.Error(t, err)
}

func TestUsersCoverWorkflowRoles(t *testing.T) {
	users, err := Users()
	require.NoError(t, err)

	roles := map[domain.Role]bool{}
	for _, u := range users {
		assert.NotEmpty(t, u.Password, u.Username)
		roles[u.Role] = true
	}
	for _, role := range []domain.Role{domain.RoleOperator, domain.RoleManager, domain.RoleProcess, domain.RoleEquipment, domain.RoleQuality, domain.RoleAdmin} {
		assert.True(t, roles[role], "missing seeded %s user", role)
	}
}

func TestTodoProviderFetch(t *testing.T) {
	p, err := NewTodoProvider()
	require.NoError(t, err)

	all := p.Fetch("")
	assert.Len(t, all, 5)

	qc := p.Fetch(domain.RoleQuality)
	ids := []string{}
	for _, item := range qc {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"TODO-1002", "TODO-1004"}, ids)

	for _, item := range all {
		if item.ID == "TODO-1005" {
			assert.Equal(t, domain.TodoStatusDone, item.Status)
		}
	}
}

func TestPagesAreInMenu(t *testing.T) {
	menu, err := Menu("")
	require.NoError(t, err)
	for path := range Pages() {
		_, ok := navigation.FindTitle(menu, path)
		assert.True(t, ok, path)
	}
}
