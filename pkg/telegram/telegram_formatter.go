package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-market-scanner/internal/scanner/dto"
)

// FormatScanSummary formats the result of a market scan into a Markdown
// message for Telegram, truncating to stay under the Telegram limit.
func FormatScanSummary(profiles []dto.StockProfile, scanTime time.Time, elapsed time.Duration) string {
	var sb strings.Builder

	sb.WriteString("📡 *Market Scan Complete*\n")
	sb.WriteString(fmt.Sprintf("📅 %s | ⏱ %s\n\n", scanTime.Format("2006-01-02 15:04:05"), elapsed.Round(time.Second)))

	if len(profiles) == 0 {
		sb.WriteString("_No promising stocks found in this scan._\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("🎯 *%d promising stocks found:*\n\n", len(profiles)))

	const maxLen = 4000
	for _, p := range profiles {
		var entry strings.Builder
		entry.WriteString(fmt.Sprintf("📈 *%s* (%s)\n", p.Symbol, p.CompanyName))
		entry.WriteString(fmt.Sprintf("💰 $%.2f | Vol %d\n", p.CurrentPrice, p.Volume))
		for _, reason := range p.Reasons {
			entry.WriteString(fmt.Sprintf("• %s\n", reason))
		}
		entry.WriteString("\n")

		if sb.Len()+entry.Len() > maxLen {
			sb.WriteString("_…truncated_\n")
			break
		}
		sb.WriteString(entry.String())
	}

	return sb.String()
}

// FormatErrorAlertMessage formats a scan failure notification.
func FormatErrorAlertMessage(t time.Time, errMsg string) string {
	return fmt.Sprintf("📛 [SCAN ERROR]\n%s\n⚠️ %s\n", t.Format("2006-01-02 15:04:05"), errMsg)
}
