// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/khorochbd/khoroch/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#2E8B57")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// DecisionStyle colors a decision by its blast radius.
func DecisionStyle(d model.Decision) lipgloss.Style {
	switch d {
	case model.DecisionAutoApply:
		return SuccessStyle
	case model.DecisionAskOnce:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

// RenderCCTable renders canonical commands as an aligned table.
func RenderCCTable(ccs []model.CanonicalCommand) string {
	if len(ccs) == 0 {
		return SubtleStyle.Render("no canonical commands found")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-14s  %-16s  %-10s  %-10s  %s",
		"CC_ID", "INTENT", "CONF", "DECISION", "RECEIVED")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i := range ccs {
		cc := &ccs[i]
		line := fmt.Sprintf("%-14s  %-16s  %-10.2f  %-10s  %s",
			shortID(cc.CCID), cc.Intent, cc.Confidence,
			DecisionStyle(cc.Decision).Render(string(cc.Decision)),
			cc.ReceivedAt.Format("2006-01-02 15:04:05"))
		b.WriteString(TableCellStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEffective renders the raw-vs-effective comparison for one
// transaction, the "show original vs corrected" transparency view.
func RenderEffective(raw *model.RawTransaction, eff *model.EffectiveRecord) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Transaction %s", shortID(raw.ID))))
	b.WriteString("\n")

	rows := []struct {
		field model.OverlayField
		raw   string
		eff   string
	}{
		{model.FieldCategory, raw.Category, eff.Category},
		{model.FieldMerchant, raw.Merchant, eff.Merchant},
		{model.FieldCurrency, raw.Currency, eff.Currency},
	}

	for _, r := range rows {
		src := eff.Source[r.field]
		line := fmt.Sprintf("%-10s  raw=%-20q effective=%-20q", r.field, r.raw, r.eff)
		if src != model.SourceRaw {
			line += WarningStyle.Render(fmt.Sprintf("  (via %s)", src))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if raw.Superseded() {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("superseded by %s", shortID(raw.SupersededBy))))
		b.WriteString("\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
