package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/stretchr/testify/require"
)

func TestMenuMapAllows(t *testing.T) {
	menu := &guard.MenuMap{
		FlatMenuMap: map[string]guard.MenuEntry{
			"10": {MenuURL: "/reports"},
			"20": {MenuURL: "/equipment/"},
		},
	}

	tests := []struct {
		name      string
		requested string
		want      bool
	}{
		{name: "exact match", requested: "/reports", want: true},
		{name: "nested path", requested: "/reports/monthly", want: true},
		{name: "boundary not crossed", requested: "/reports-archive", want: false},
		{name: "trailing slash in menu url", requested: "/equipment/list", want: true},
		{name: "root always permitted", requested: "/", want: true},
		{name: "unknown path", requested: "/billing", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, menu.Allows(tt.requested))
		})
	}
}

func TestMenuMapEmpty(t *testing.T) {
	var nilMenu *guard.MenuMap
	require.True(t, nilMenu.Empty())
	require.True(t, (&guard.MenuMap{}).Empty())
	require.False(t, reportsMenu().Empty())

	// A nil map still permits the root path and nothing else.
	require.True(t, nilMenu.Allows("/"))
	require.False(t, nilMenu.Allows("/reports"))
}
