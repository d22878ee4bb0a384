package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// row is the one-line summary of a record
type row struct {
	Time     string
	Level    string
	ID       string
	Provider string
	Summary  string
}

// kv is one message dictionary entry in display order
type kv struct {
	Key   string
	Value string
}

// summarize picks the display columns for a record from either cmdlet's field set
func summarize(rec types.Record) row {
	r := row{
		Time:     firstField(rec, types.FieldTimeCreated, types.FieldTimeGenerated),
		Level:    firstField(rec, types.FieldLevelDisplayName, types.FieldEntryType),
		ID:       types.StringField(rec, types.FieldID),
		Provider: firstField(rec, types.FieldProviderName, types.FieldSource),
	}

	entries := messageEntries(rec[types.FieldMessage])
	for _, e := range entries {
		if e.Key == types.FieldDescription {
			r.Summary = e.Value
			break
		}
	}
	if r.Summary == "" && len(entries) > 0 {
		r.Summary = entries[0].Key + "=" + entries[0].Value
	}
	r.Summary = strings.Join(strings.Fields(r.Summary), " ")
	return r
}

func firstField(rec types.Record, keys ...string) string {
	for _, k := range keys {
		if v := types.StringField(rec, k); v != "" {
			return v
		}
	}
	return ""
}

// messageEntries flattens a Message value for display. A parsed dictionary
// lists Description first, then keys alphabetically; a raw string is shown
// as a single Description entry.
func messageEntries(v any) []kv {
	var entries []kv
	switch m := v.(type) {
	case map[string]string:
		for k, val := range m {
			entries = append(entries, kv{k, val})
		}
	case map[string]any:
		for k, val := range m {
			entries = append(entries, kv{k, fmt.Sprint(val)})
		}
	case string:
		if m != "" {
			return []kv{{types.FieldDescription, m}}
		}
		return nil
	default:
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key == types.FieldDescription {
			return entries[j].Key != types.FieldDescription
		}
		if entries[j].Key == types.FieldDescription {
			return false
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// RecordsModel is the scrollable record list with a detail panel
type RecordsModel struct {
	width, height int

	records []types.Record
	errMsg  string

	// selection & scrolling
	selected   int
	listTop    int
	listHeight int
}

// Fixed layout constants
const (
	recordsHeaderLines = 6 // title + tabs + status + blank + column header + separator
	recordsDetailLines = 9 // separator + detail panel
	recordsFooterLines = 2 // separator + help
)

// NewRecordsModel creates an empty record list
func NewRecordsModel() RecordsModel {
	return RecordsModel{listHeight: 1}
}

// SetResult replaces the displayed records, keeping the selection in range
func (m *RecordsModel) SetResult(result *types.QueryResult) {
	m.errMsg = ""
	m.records = nil
	if result != nil {
		if msg, isErr := result.ErrorMessage(); isErr {
			m.errMsg = msg
		} else {
			m.records = result.RecordList()
		}
	}
	if m.selected >= len(m.records) {
		m.selected = len(m.records) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.ensureVisible()
}

// Selected returns the highlighted record, or nil
func (m RecordsModel) Selected() types.Record {
	if m.selected < 0 || m.selected >= len(m.records) {
		return nil
	}
	return m.records[m.selected]
}

func (m RecordsModel) Update(msg tea.Msg) (RecordsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k", "K":
			if m.selected > 0 {
				m.selected--
				m.ensureVisible()
			}
		case "down", "j", "J":
			if m.selected < len(m.records)-1 {
				m.selected++
				m.ensureVisible()
			}
		case "home", "g":
			m.selected = 0
			m.ensureVisible()
		case "end", "G":
			if len(m.records) > 0 {
				m.selected = len(m.records) - 1
				m.ensureVisible()
			}
		}
	}
	return m, nil
}

func (m *RecordsModel) recalcLayout() {
	m.listHeight = m.height - recordsHeaderLines - recordsDetailLines - recordsFooterLines
	if m.listHeight < 1 {
		m.listHeight = 1
	}
	m.ensureVisible()
}

func (m *RecordsModel) ensureVisible() {
	if m.selected < m.listTop {
		m.listTop = m.selected
	} else if m.selected >= m.listTop+m.listHeight {
		m.listTop = m.selected - m.listHeight + 1
	}
	if m.listTop < 0 {
		m.listTop = 0
	}
}

// View renders the column header, visible rows and the detail panel
func (m RecordsModel) View() string {
	w := m.width
	if w < 40 {
		w = 80
	}

	var b strings.Builder

	if m.errMsg != "" {
		b.WriteString(AlertStyle.Render("Query failed"))
		b.WriteString("\n")
		for _, line := range strings.Split(m.errMsg, "\n") {
			b.WriteString(HintStyle.Render(Truncate(strings.TrimRight(line, "\r"), w)))
			b.WriteString("\n")
		}
		return b.String()
	}

	if len(m.records) == 0 {
		b.WriteString(HintStyle.Render("No records."))
		b.WriteString("\n")
		return b.String()
	}

	summaryW := w - 19 - 12 - 7 - 28 - 4
	if summaryW < 10 {
		summaryW = 10
	}

	header := fmt.Sprintf("%-19s %-12s %-7s %-28s %s", "Time", "Level", "Id", "Provider", "Message")
	b.WriteString(LabelStyle.Render(Truncate(header, w)))
	b.WriteString("\n")
	b.WriteString(SeparatorStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	end := m.listTop + m.listHeight
	if end > len(m.records) {
		end = len(m.records)
	}
	for i := m.listTop; i < end; i++ {
		r := summarize(m.records[i])
		level := LevelStyle(r.Level).Render(fmt.Sprintf("%-12s", Truncate(r.Level, 12)))
		line := fmt.Sprintf("%-19s %s %-7s %-28s %s",
			Truncate(r.Time, 19), level, Truncate(r.ID, 7), Truncate(r.Provider, 28), Truncate(r.Summary, summaryW))

		if i == m.selected {
			b.WriteString(RecordSelectedStyle.Render("▸ ") + line)
		} else {
			b.WriteString(RecordStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString(SeparatorStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")
	b.WriteString(m.renderDetail(w))

	return b.String()
}

// renderDetail shows the message dictionary of the selected record
func (m RecordsModel) renderDetail(w int) string {
	rec := m.Selected()
	if rec == nil {
		return ""
	}

	entries := messageEntries(rec[types.FieldMessage])
	if len(entries) == 0 {
		return HintStyle.Render("(no message)") + "\n"
	}

	keyW := 0
	for _, e := range entries {
		if len(e.Key) > keyW {
			keyW = len(e.Key)
		}
	}
	if keyW > 24 {
		keyW = 24
	}

	var b strings.Builder
	maxLines := recordsDetailLines - 1
	for i, e := range entries {
		if i == maxLines-1 && len(entries) > maxLines {
			b.WriteString(HintStyle.Render(fmt.Sprintf("… %d more fields", len(entries)-i)))
			b.WriteString("\n")
			break
		}
		value := strings.Join(strings.Fields(e.Value), " ")
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s", keyW, Truncate(e.Key, keyW))))
		b.WriteString("  ")
		b.WriteString(ValueStyle.Render(Truncate(value, w-keyW-2)))
		b.WriteString("\n")
	}
	return b.String()
}
