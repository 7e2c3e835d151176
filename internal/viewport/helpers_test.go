package viewport

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/loader"
)

func numbered(n int) []domain.Item {
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{ID: fmt.Sprintf("item-%d", i), Content: fmt.Sprintf("item %d", i)}
	}
	return out
}

func testOptions() Options {
	o := DefaultOptions()
	o.Width = 40
	o.Height = 10
	o.OverscanCount = 3
	return o
}

func newModel(t *testing.T, o Options, cb Callbacks, items []domain.Item) *Model {
	t.Helper()
	m, err := New(o, cb)
	require.NoError(t, err)
	if items != nil {
		require.NoError(t, m.SetItems(items))
	}
	return m
}

// run executes cmd and feeds every resulting message back into m until no
// commands remain.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, next)
	}
}

// firstMsg executes cmd, descending into batches, and returns the first
// non-batch message.
func firstMsg(cmd tea.Cmd) tea.Msg {
	for cmd != nil {
		msg := cmd()
		batch, ok := msg.(tea.BatchMsg)
		if !ok {
			return msg
		}
		cmd = nil
		for _, c := range batch {
			if c != nil {
				cmd = c
				break
			}
		}
	}
	return nil
}

// source serves "row N" items up to total and can fail the first calls.
type source struct {
	total    int
	failures int
	calls    int
	starts   []int
}

func (s *source) Load(_ context.Context, start, count int) ([]domain.Item, error) {
	s.calls++
	s.starts = append(s.starts, start)
	if s.calls <= s.failures {
		return nil, errors.New("unreachable")
	}
	var out []domain.Item
	for i := start; i < min(start+count, s.total); i++ {
		out = append(out, domain.Item{ID: fmt.Sprintf("row-%d", i), Content: fmt.Sprintf("row %d", i)})
	}
	return out, nil
}

func immediate(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

var _ loader.Scheduler = immediate

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
