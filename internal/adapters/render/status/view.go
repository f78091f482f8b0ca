package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultTokenTTL = 2 * time.Minute

type RenderOptions struct {
	Now time.Time
	// TokenTTL is how long a widget token stays redeemable.
	TokenTTL time.Duration
}

func (o RenderOptions) tokenTTL() time.Duration {
	if o.TokenTTL <= 0 {
		return defaultTokenTTL
	}
	return o.TokenTTL
}

func renderTokens(list application.TokenList, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Harvested Tokens"),
		s.header.Render(tokensHeader(list, opts.Now)),
	}

	if len(list.Tokens) == 0 {
		lines = append(lines, s.empty.Render("No tokens stored yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i := len(list.Tokens) - 1; i >= 0; i-- {
		lines = append(lines, s.section.Render(renderToken(i, list.Tokens[i], opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func tokensHeader(list application.TokenList, now time.Time) string {
	header := fmt.Sprintf("tokens: %d", list.TotalCount)
	if list.LastUpdated.IsZero() {
		return header
	}

	return header + ", last updated " + formatAge(list.LastUpdated, now)
}

func renderToken(index int, record domain.TokenRecord, opts RenderOptions, s styles) string {
	title := fmt.Sprintf("#%d %s", index, record.Version)
	if record.Action != "" {
		title += " " + record.Action
	}
	if record.HarvestNumber > 0 {
		title += fmt.Sprintf(" (harvest %d)", record.HarvestNumber)
	}

	ageStyle := lipgloss.NewStyle().Foreground(ageColor(record.ReceivedAt, opts.Now, opts.tokenTTL()))
	meta := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render(fmt.Sprintf("length: %d", record.Length)),
		" ",
		ageStyle.Render(fmt.Sprintf("(%s)", formatAge(record.ReceivedAt, opts.Now))),
	)
	if isExpired(record.ReceivedAt, opts.Now, opts.tokenTTL()) {
		meta += " " + s.warning.Render("[expired]")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.token.Render(title),
		meta,
		s.preview.Render(record.Preview),
	)
}

// RenderStatusLine formats one scheduler status update for the terminal.
func RenderStatusLine(status domain.Status, now time.Time) string {
	return renderStatusLine(status, now, newStyles())
}

func renderStatusLine(status domain.Status, now time.Time, s styles) string {
	label := s.modeLabel.Render(fmt.Sprintf("[%s]", status.Mode))
	if status.Mode == domain.ModeStopped {
		label = s.stopped.Render(fmt.Sprintf("[%s]", status.Mode))
	}

	message := s.detail.Render(status.LastMessage)
	if strings.Contains(status.LastMessage, "stored!") {
		message = s.success.Render(status.LastMessage)
	}

	parts := []string{
		label,
		message,
		s.counter.Render(fmt.Sprintf("tokens: %d", status.TokenCount)),
	}
	if status.ConsecutiveFailures > 0 {
		parts = append(parts, s.warning.Render(fmt.Sprintf("failures: %d", status.ConsecutiveFailures)))
	}
	if !status.NextAttemptAt.IsZero() && !now.IsZero() && status.NextAttemptAt.After(now) {
		parts = append(parts, s.header.Render("next "+formatCountdown(status.NextAttemptAt.Sub(now))))
	}

	return strings.Join(parts, " ")
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	age := now.Sub(at)
	switch {
	case age < time.Second:
		return "just now"
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return at.Format("15:04 on 02 Jan")
	}
}

func formatCountdown(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 60 {
		return fmt.Sprintf("in %ds", seconds)
	}

	return fmt.Sprintf("in %dm%02ds", seconds/60, seconds%60)
}

func isExpired(receivedAt, now time.Time, ttl time.Duration) bool {
	if receivedAt.IsZero() || now.IsZero() {
		return false
	}

	return now.Sub(receivedAt) > ttl
}

func interpolateColor(value, lower, upper float64) lipgloss.Color {
	if upper == lower {
		return lipgloss.Color("255")
	}

	normalized := (value - lower) / (upper - lower)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp: 240 (faded) to 255 (bright white)
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

// ageColor fades from white for a fresh token to grey once its lifetime is spent.
func ageColor(receivedAt, now time.Time, ttl time.Duration) lipgloss.Color {
	if now.IsZero() || receivedAt.IsZero() {
		return lipgloss.Color("255")
	}

	remaining := ttl.Seconds() - now.Sub(receivedAt).Seconds()
	return interpolateColor(remaining, 0, ttl.Seconds())
}
