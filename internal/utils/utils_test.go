package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := NewTable("TASK", "STATUS")
	require.NoError(t, table.AddRow("build.api", "success"))
	require.NoError(t, table.AddRow("push.api"))
	assert.Error(t, table.AddRow("a", "b", "c"))
	assert.Equal(t, 2, table.Len())

	expected := "" +
		"┌───────────┬─────────┐\n" +
		"│ TASK      │ STATUS  │\n" +
		"├───────────┼─────────┤\n" +
		"│ build.api │ success │\n" +
		"│ push.api  │         │\n" +
		"└───────────┴─────────┘\n"
	assert.Equal(t, expected, table.String())
}

func TestBox(t *testing.T) {
	tests := []struct {
		name  string
		box   string
		icon  string
		title string
	}{
		{name: "success", box: Success("Build complete", "2 modules built"), icon: "✓", title: "Build complete"},
		{name: "error", box: Error("Build failed", "build.api failed"), icon: "✗", title: "Build failed"},
		{name: "warning", box: Warning("Nothing to push"), icon: "⚠", title: "Nothing to push"},
		{name: "info", box: Info("Environment"), icon: "ℹ", title: "Environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.box, tt.icon)
			assert.Contains(t, tt.box, tt.title)
			assert.Contains(t, tt.box, "╭")
			assert.Contains(t, tt.box, "╯")
		})
	}
}

func TestBox_Bullets(t *testing.T) {
	out := NewBox(InfoMessage, "Modules").AddBullet("api").AddBullet("worker").WithWidth(60).Render()
	assert.Contains(t, out, "• api")
	assert.Contains(t, out, "• worker")
	assert.Equal(t, 5, len(strings.Split(out, "\n")))
}
