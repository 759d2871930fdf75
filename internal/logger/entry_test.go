package logger

import (
	"bytes"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(buf *bytes.Buffer) *Entry {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&CLIFormatter{DisableLevel: true, DisableTimestamp: true})
	return NewEntry(l)
}

func TestEntry_InfoCreatesChild(t *testing.T) {
	var buf bytes.Buffer
	root := newTestRoot(&buf)

	child := root.Info("api", "Pushing")

	assert.Equal(t, "api", child.Section())
	assert.Equal(t, "Pushing", child.Message())
	assert.Equal(t, StatusActive, child.Status())
	assert.Equal(t, "api → Pushing\n", buf.String())
}

func TestEntry_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		resolve  func(e *Entry)
		status   EntryStatus
		expected string
	}{
		{
			name:     "success",
			resolve:  func(e *Entry) { e.SetSuccess("Ready") },
			status:   StatusSuccess,
			expected: "api → Pushing → Ready\n",
		},
		{
			name:     "warn",
			resolve:  func(e *Entry) { e.SetWarn("no changes") },
			status:   StatusWarn,
			expected: "api → Pushing → no changes\n",
		},
		{
			name:     "error",
			resolve:  func(e *Entry) { e.SetError("") },
			status:   StatusError,
			expected: "api → Pushing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			child := newTestRoot(&buf).Info("api", "Pushing")
			buf.Reset()

			tt.resolve(child)

			assert.Equal(t, tt.status, child.Status())
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestEntry_StopKeepsVerdict(t *testing.T) {
	var buf bytes.Buffer
	root := newTestRoot(&buf)

	warned := root.Info("api", "Pushing")
	warned.SetWarn("declined")
	warned.Stop()
	assert.Equal(t, StatusWarn, warned.Status())

	open := root.Info("worker", "Push disabled")
	open.Stop()
	assert.Equal(t, StatusDone, open.Status())
}

func TestEntry_SectionInherited(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestRoot(&buf).Info("api", "Building")
	child := parent.Info("", "compiling")
	assert.Equal(t, "api", child.Section())
}

func TestEntry_ConcurrentChildren(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	root := NewEntry(l)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root.Info("m", "work").SetSuccess("")
		}()
	}
	wg.Wait()

	entries := hook.AllEntries()
	require.Len(t, entries, 100)
	resolved := 0
	for _, e := range entries {
		assert.Equal(t, "m", e.Data["section"])
		if e.Data["status"] == "success" {
			resolved++
		}
	}
	assert.Equal(t, 50, resolved)
}

func TestEntryStatus_String(t *testing.T) {
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "warn", StatusWarn.String())
	assert.Equal(t, "unknown", EntryStatus(42).String())
}
