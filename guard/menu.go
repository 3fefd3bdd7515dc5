package guard

import (
	"context"
	"strings"
)

// MenuEntry is one permitted route in the externally supplied menu map.
type MenuEntry struct {
	MenuURL   string      `json:"menuUrl"`
	UppMenuID string      `json:"uppMenuId"`
	Children  []MenuEntry `json:"children"`
}

// MenuMap is the set of URL-to-permission mappings defining which routes the
// current user may access.
type MenuMap struct {
	MenuTree    []MenuEntry          `json:"menuTree"`
	FlatMenuMap map[string]MenuEntry `json:"flatMenuMap"`
}

// MenuProvider supplies the menu map for the current user. It is an external
// collaborator; the guard treats it as opaque.
type MenuProvider interface {
	Menu(ctx context.Context) (*MenuMap, error)
}

// Empty reports whether the map carries no permitted routes.
func (m *MenuMap) Empty() bool {
	return m == nil || len(m.FlatMenuMap) == 0
}

// Allows resolves a requested URL against the permitted menu URLs. A URL is
// allowed when it exactly equals a permitted URL or extends one across a
// path boundary: /reports permits /reports/x but not /reports-archive. The
// root path is always permitted.
func (m *MenuMap) Allows(requested string) bool {
	if requested == "/" || requested == "" {
		return true
	}
	if m == nil {
		return false
	}
	for _, entry := range m.FlatMenuMap {
		if urlCovers(entry.MenuURL, requested) {
			return true
		}
	}
	return false
}

func urlCovers(menuURL, requested string) bool {
	if menuURL == "" {
		return false
	}
	menuURL = strings.TrimSuffix(menuURL, "/")
	return requested == menuURL || strings.HasPrefix(requested, menuURL+"/")
}
