package ecm

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sync/errgroup"

	"ecm/record"
)

// recordMsg carries one decoded run header to the inspector's update loop.
// The decode-stepper goroutine produces these; it never touches model
// state directly.
type recordMsg struct {
	offset int64
	rec    record.Record
}

type inspectDoneMsg struct{}
type inspectErrMsg struct{ err error }

// countingReader tracks how many bytes have been read through it, so the
// decode-stepper goroutine can report each record's true stream offset
// (record.Read's own header bytes included, not just payload sizes).
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type inspectModel struct {
	records []recordMsg
	cursor  int
	done    bool
	err     error
}

func (m inspectModel) Init() tea.Cmd { return nil }

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordMsg:
		m.records = append(m.records, msg)
		return m, nil
	case inspectDoneMsg:
		m.done = true
		return m, nil
	case inspectErrMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

var (
	inspectTitleStyle   = lipgloss.NewStyle().Bold(true)
	inspectCursorStyle  = lipgloss.NewStyle().Reverse(true)
	inspectStatusStyle  = lipgloss.NewStyle().Faint(true)
	inspectRecordWindow = 20
)

func (m inspectModel) View() string {
	var b strings.Builder

	status := "decoding..."
	switch {
	case m.err != nil:
		status = "error: " + m.err.Error()
	case m.done:
		status = fmt.Sprintf("%d records", len(m.records))
	}
	b.WriteString(inspectTitleStyle.Render("ecm inspect") + "  " + inspectStatusStyle.Render(status) + "\n\n")

	start := m.cursor - inspectRecordWindow/2
	if start < 0 {
		start = 0
	}
	end := start + inspectRecordWindow
	if end > len(m.records) {
		end = len(m.records)
	}

	for i := start; i < end; i++ {
		r := m.records[i]
		line := fmt.Sprintf("%6d  off=0x%08x  type=%-10s count=%d", i, r.offset, r.rec.Type, r.rec.Count)
		if i == m.cursor {
			line = inspectCursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.cursor < len(m.records) {
		b.WriteString("\n" + spew.Sdump(m.records[m.cursor].rec))
	}
	b.WriteString("\n(j/k move, q quit)\n")
	return b.String()
}

// Inspect runs an interactive terminal browser over the record stream of
// an already-opened ECM stream; r must be positioned just past the
// four-byte header. Records are decoded by a background goroutine and
// streamed into the UI as they're found, so a large stream doesn't block
// the first frame from rendering.
func Inspect(r io.Reader) error {
	p := tea.NewProgram(inspectModel{})
	cr := &countingReader{r: r}

	g := new(errgroup.Group)
	g.Go(func() error {
		for {
			offset := 4 + cr.n
			rec, err := record.Read(cr)
			if err != nil {
				if errors.Is(err, record.ErrEnd) {
					p.Send(inspectDoneMsg{})
					return nil
				}
				p.Send(inspectErrMsg{err: err})
				return err
			}
			p.Send(recordMsg{offset: offset, rec: rec})

			size := int64(rec.Type.StrippedSize()) * int64(rec.Count)
			if _, err := io.CopyN(io.Discard, cr, size); err != nil {
				p.Send(inspectErrMsg{err: err})
				return err
			}
		}
	})

	_, runErr := p.Run()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
