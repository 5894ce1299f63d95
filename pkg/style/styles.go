package style

import (
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)
)

// Action styles
var (
	CreateStyle = lipgloss.NewStyle().
			Foreground(CreateColor).
			Bold(true)

	UpdateStyle = lipgloss.NewStyle().
			Foreground(UpdateColor).
			Bold(true)

	DeleteStyle = lipgloss.NewStyle().
			Foreground(DeleteColor).
			Bold(true)
)

// Operation indicator styles
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	PendingIndicator = MutedStyle.Render("○")
)

// ActionVerbs holds the past and future tense label for each action.
var ActionVerbs = map[types.Action]struct {
	Past   string
	Future string
}{
	types.ActionCreate:   {Past: "created", Future: "create"},
	types.ActionUpdate:   {Past: "updated", Future: "update"},
	types.ActionDelete:   {Past: "deleted", Future: "delete"},
	types.ActionSkip:     {Past: "unchanged", Future: "unchanged"},
	types.ActionConflict: {Past: "conflict", Future: "conflict"},
}

// Verb returns the label for a, in past tense once the action ran.
func Verb(a types.Action, done bool) string {
	v, ok := ActionVerbs[a]
	if !ok {
		return string(a)
	}
	if done {
		return v.Past
	}
	return v.Future
}

// ActionStyle returns the style used to label a.
func ActionStyle(a types.Action) lipgloss.Style {
	switch a {
	case types.ActionCreate:
		return CreateStyle
	case types.ActionUpdate:
		return UpdateStyle
	case types.ActionDelete:
		return DeleteStyle
	case types.ActionConflict:
		return WarningStyle
	default:
		return MutedStyle
	}
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
