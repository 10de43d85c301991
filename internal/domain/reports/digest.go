package reports

import (
	"context"
	"fmt"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Notifier mails the expiring and expired sections of the compliance report.
type Notifier struct {
	Reports    *Service
	Mailer     Mailer
	Recipients []string
}

func NewNotifier(reports *Service, mailer Mailer, recipients []string) *Notifier {
	return &Notifier{Reports: reports, Mailer: mailer, Recipients: recipients}
}

// Notify sends one digest when anything needs attention and returns the
// number of items it listed.
func (n *Notifier) Notify(ctx context.Context) (int, error) {
	if len(n.Recipients) == 0 {
		return 0, nil
	}
	report, err := n.Reports.Compliance(ctx)
	if err != nil {
		return 0, err
	}
	count := len(report.Expiring) + len(report.Expired)
	if count == 0 {
		return 0, nil
	}
	subject, body := Digest(report)
	if err := n.Mailer.Send(ctx, n.Recipients, subject, body); err != nil {
		return 0, fmt.Errorf("send compliance digest: %w", err)
	}
	return count, nil
}

// Digest renders the plain-text alert for a report.
func Digest(r *ComplianceReport) (string, string) {
	subject := fmt.Sprintf("Compliance alert: %d expired, %d expiring", len(r.Expired), len(r.Expiring))

	var b strings.Builder
	fmt.Fprintf(&b, "Compliance report generated %s (threshold %d days)\n", r.GeneratedAt.Format("2006-01-02"), r.ThresholdDays)
	writeSection(&b, "Expired", r.Expired)
	writeSection(&b, "Expiring soon", r.Expiring)
	return subject, b.String()
}

func writeSection(b *strings.Builder, title string, items []Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(items))
	for _, it := range items {
		who := it.EmployeeName
		if who == "" {
			who = "unassigned"
		}
		fmt.Fprintf(b, "- %s %q for %s: %s on %s (%d days)\n",
			it.Kind, it.Name, who, it.Status, it.ExpiryDate.Format("2006-01-02"), it.DaysUntilExpiry)
	}
}
