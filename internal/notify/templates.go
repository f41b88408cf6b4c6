package notify

import (
	"fmt"
	"strings"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

func formatAmount(pence int64) string {
	return fmt.Sprintf("£%.2f", float64(pence)/100)
}

func formatNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func jackpotMessage(to string, sub *models.Subscriber, draw *models.Draw, res models.Result) Message {
	return Message{
		To:      to,
		Subject: "You've won the monthly draw jackpot!",
		Body: fmt.Sprintf(
			"Dear %s,\n\nCongratulations! Your line %s matched all four winning numbers (%s) in the draw on %s.\n\nYour prize of %s will be paid to you shortly.\n\nThank you for supporting the club.",
			sub.FirstName,
			formatNumbers(res.Numbers),
			formatNumbers(draw.WinningNumbers),
			draw.DrawDate.Format("2 January 2006"),
			formatAmount(res.PrizeAmount),
		),
	}
}

func luckyDipMessage(to string, sub *models.Subscriber, draw *models.Draw, res models.Result) Message {
	return Message{
		To:      to,
		Subject: "You've won a lucky dip prize!",
		Body: fmt.Sprintf(
			"Dear %s,\n\nGood news! Your line %s was picked as a lucky dip winner in the draw on %s.\n\nYour prize of %s will be paid to you shortly.\n\nThank you for supporting the club.",
			sub.FirstName,
			formatNumbers(res.Numbers),
			draw.DrawDate.Format("2 January 2006"),
			formatAmount(res.PrizeAmount),
		),
	}
}

func summaryMessage(to string, draw *models.Draw, st *models.Settlement, rep Report) Message {
	subject := fmt.Sprintf("Draw summary for %s", draw.DrawDate.Format("2 January 2006"))
	if draw.IsTest {
		subject = "[TEST] " + subject
	}
	return Message{
		To:      to,
		Subject: subject,
		Body: fmt.Sprintf(
			"Winning numbers: %s\nJackpot: %s\nJackpot winners: %d\nLucky dip winners: %d\nEntries settled: %d\nWinner emails attempted: %d (failed: %d)\nCertificate: %s",
			formatNumbers(draw.WinningNumbers),
			formatAmount(draw.JackpotAmount),
			st.JackpotWinners,
			st.LuckyDipWinners,
			len(st.Results),
			rep.EmailsAttempted,
			rep.EmailsFailed,
			draw.CertificateRef,
		),
	}
}
