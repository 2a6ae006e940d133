package reporter

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for terminal output. Disabled styles
// render text unchanged.
type Styles struct {
	enabled bool

	Header    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Border    lipgloss.Style
	BorderSet lipgloss.Border

	IconOK      string
	IconWarning string
	IconError   string
}

func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		s.Label = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Value = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		s.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Border = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.BorderSet = lipgloss.RoundedBorder()

		s.IconOK = "✓"
		s.IconWarning = "⚠"
		s.IconError = "✗"
	} else {
		s.Header = lipgloss.NewStyle()
		s.Label = lipgloss.NewStyle()
		s.Value = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()
		s.Error = lipgloss.NewStyle()
		s.Muted = lipgloss.NewStyle()
		s.Border = lipgloss.NewStyle()
		s.BorderSet = lipgloss.NormalBorder()

		s.IconOK = "OK:"
		s.IconWarning = "WARN:"
		s.IconError = "ERROR:"
	}

	return s
}

// Enabled returns whether styling is enabled.
func (s *Styles) Enabled() bool {
	return s.enabled
}
