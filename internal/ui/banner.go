package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ┌─┐┬  ┬┌─┐┌┐┌┌┬┐┌┬┐┌─┐┌─┐┬┌─
 │  │  │├┤ │││ │  ││├┤ └─┐├┴┐
 └─┘┴─┘┴└─┘┘└┘ ┴ ─┴┘└─┘└─┘┴ ┴`

const bannerSubtitle = "Insured Locations • Schedule of Values"

// RenderBanner returns the styled banner with its subtitle.
func RenderBanner() string {
	lines := splitLines(bannerArt)

	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	blockWidth := maxWidth
	if w := lipgloss.Width(bannerSubtitle); w > blockWidth {
		blockWidth = w
	}

	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(BannerStyle.Render(line) + "\n")
	}
	subtitle := MutedStyle.Width(blockWidth).Render(bannerSubtitle)
	return b.String() + subtitle + "\n"
}

// RenderScope renders the organization and client the grid is bound to.
func RenderScope(org, client string) string {
	if client == "" {
		return ScopeBadgeStyle.Render(org) + " " + MutedStyle.Render("all clients")
	}
	return ScopeBadgeStyle.Render(org) + " " + AccentStyle.Render(client)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
