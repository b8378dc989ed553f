package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/board"
)

const columnWidth = 34

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(columnWidth)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	priorityStyles = map[api.Priority]lipgloss.Style{
		api.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		api.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		api.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		api.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}

	noticeStyles = map[string]lipgloss.Style{
		board.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		board.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		board.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// renderBoard lays the four columns out side by side.
func renderBoard(b board.Board, now time.Time) string {
	columns := b.Columns()
	rendered := make([]string, 0, len(columns))
	for _, column := range columns {
		rendered = append(rendered, renderColumn(column, now))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderColumn(column board.Column, now time.Time) string {
	lines := []string{
		headerStyle.Render(fmt.Sprintf("%s (%d)", column.Status, column.Count)),
	}
	if len(column.Tickets) == 0 {
		lines = append(lines, mutedStyle.Render("No tickets"))
	}
	for _, ticket := range column.Tickets {
		lines = append(lines, "", renderCard(ticket, now))
	}
	return columnStyle.Render(strings.Join(lines, "\n"))
}

func renderCard(ticket api.Ticket, now time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(ticket.Title))
	b.WriteString("\n")

	meta := []string{mutedStyle.Render(shortID(ticket.ID))}
	if ticket.Priority != "" {
		style, ok := priorityStyles[ticket.Priority]
		if !ok {
			style = mutedStyle
		}
		meta = append(meta, style.Render(string(ticket.Priority)))
	}
	if !ticket.CreatedAt.IsZero() {
		meta = append(meta, mutedStyle.Render(humanize.RelTime(ticket.CreatedAt, now, "ago", "from now")))
	}
	b.WriteString(strings.Join(meta, " · "))

	if len(ticket.Assignees) > 0 {
		names := make([]string, 0, len(ticket.Assignees))
		for _, assignee := range ticket.Assignees {
			name := assignee.Name
			if name == "" {
				name = shortID(assignee.ID)
			}
			names = append(names, name)
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(strings.Join(names, ", ")))
	}
	return b.String()
}

func renderNotice(kind, message string) string {
	style, ok := noticeStyles[kind]
	if !ok {
		style = mutedStyle
	}
	return style.Render(message)
}

// shortID trims Mongo-style ids to their last eight characters.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func relativeTime(t time.Time) string {
	return humanize.Time(t)
}
