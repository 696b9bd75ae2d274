package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	List   ListTheme
	Form   FormTheme
	Footer FooterTheme
	Modal  ModalTheme
}

// HeaderTheme styles the title line and the tab strip.
type HeaderTheme struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Date      lipgloss.Style
}

// ListTheme styles the home list rows.
type ListTheme struct {
	Row         lipgloss.Style
	Cursor      lipgloss.Style
	Date        lipgloss.Style
	Snippet     lipgloss.Style
	Selected    lipgloss.Style
	Placeholder lipgloss.Style
}

// FormTheme styles the login, entry and settings forms.
type FormTheme struct {
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Field        lipgloss.Style
	Error        lipgloss.Style
	Disabled     lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/help bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Alert  lipgloss.Style
}

// ModalTheme styles centered confirmation prompts.
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	faint := lipgloss.Color("244")

	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))

	return Theme{
		Header: HeaderTheme{
			Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
			Tab:       tab,
			ActiveTab: tab.Foreground(accent).Bold(true).Underline(true),
			Date:      lipgloss.NewStyle().Foreground(faint),
		},
		List: ListTheme{
			Row:         lipgloss.NewStyle(),
			Cursor:      lipgloss.NewStyle().Foreground(accent).Bold(true),
			Date:        lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
			Snippet:     lipgloss.NewStyle().Foreground(faint),
			Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
			Placeholder: lipgloss.NewStyle().Foreground(faint).Italic(true),
		},
		Form: FormTheme{
			Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			FocusedLabel: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Field:        lipgloss.NewStyle().PaddingLeft(2),
			Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Disabled:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(faint),
			Alert:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
	}
}
