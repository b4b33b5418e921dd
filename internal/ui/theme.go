package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
)

// Terminal theme for the show command.

const (
	IconTree  = "🎄"
	IconStar  = "⭐"
	IconOpen  = "✓"
	IconLock  = "🔒"
	IconError = "🧨"
)

var (
	cRed   = lipgloss.Color("160")
	cGreen = lipgloss.Color("34")
	cGold  = lipgloss.Color("220")
	cMuted = lipgloss.Color("244")
	cWhite = lipgloss.Color("231")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cRed)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGreen)

	cell = lipgloss.NewStyle().
		Width(CellWidth-2).
		Align(lipgloss.Center).
		BorderStyle(lipgloss.RoundedBorder())

	lockedCell   = cell.Foreground(cMuted).BorderForeground(cMuted)
	unlockedCell = cell.Bold(true).Foreground(cWhite).Background(cRed).BorderForeground(cRed)
	openedCell   = cell.Bold(true).Foreground(cWhite).Background(cGreen).BorderForeground(cGreen)
)

// CellWidth is the rendered width of one window including its border
const CellWidth = 12

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

// Columns picks how many windows fit on a line of the given width
func Columns(width int) int {
	cols := width / CellWidth
	switch {
	case cols >= 6:
		return 6
	case cols >= 4:
		return 4
	case cols >= 3:
		return 3
	case cols >= 2:
		return 2
	default:
		return 1
	}
}

// WindowCell renders one window
func WindowCell(w calendar.Window) string {
	label := fmt.Sprintf("%d", w.Day)
	switch w.Status {
	case calendar.Opened:
		return openedCell.Render(label + " " + IconOpen)
	case calendar.Unlocked:
		return unlockedCell.Render(label)
	default:
		return lockedCell.Render(label + " " + IconLock)
	}
}

// Grid lays the windows out in rows of cols cells
func Grid(windows []calendar.Window, cols int) string {
	if cols < 1 {
		cols = 1
	}
	var rows []string
	for start := 0; start < len(windows); start += cols {
		end := start + cols
		if end > len(windows) {
			end = len(windows)
		}
		cells := make([]string, 0, cols)
		for _, w := range windows[start:end] {
			cells = append(cells, WindowCell(w))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Legend explains the cell colors
func Legend() string {
	return strings.Join([]string{
		Good.Render("■ opened"),
		Bad.Render("■ available"),
		Muted.Render("■ locked"),
	}, "  ")
}
