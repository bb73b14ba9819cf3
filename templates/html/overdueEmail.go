package templates

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// OverdueCase is one row of the overdue reminder
type OverdueCase struct {
	CaseNumber  string
	Title       string
	DueDate     time.Time
	DaysOverdue int
}

// OverdueSubject is the subject line of the overdue reminder for n cases
func OverdueSubject(n int) string {
	if n == 1 {
		return "1 investigation case is past due"
	}
	return fmt.Sprintf("%d investigation cases are past due", n)
}

// RenderOverdueCasesEmail generates the HTML reminder listing the recipient's
// overdue cases
func RenderOverdueCasesEmail(recipientName string, cases []OverdueCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>\n", html.EscapeString(recipientName))
	b.WriteString("<p>The following cases you own or are assigned to have passed their due date:</p>\n")
	b.WriteString("<table>\n<tr><th>Case</th><th>Title</th><th>Due</th><th>Overdue</th></tr>\n")
	for _, c := range cases {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td class=\"overdue\">%s</td></tr>\n",
			html.EscapeString(c.CaseNumber),
			html.EscapeString(c.Title),
			c.DueDate.UTC().Format("Jan 2, 2006"),
			days(c.DaysOverdue),
		)
	}
	b.WriteString("</table>\n")
	b.WriteString("<p>Please update the due date or move the case forward.</p>")
	return render(OverdueSubject(len(cases)), b.String())
}

// RenderOverdueCasesText is the plain text alternative of RenderOverdueCasesEmail
func RenderOverdueCasesText(recipientName string, cases []OverdueCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThe following cases you own or are assigned to have passed their due date:\n\n", recipientName)
	for _, c := range cases {
		fmt.Fprintf(&b, "- %s %s (due %s, %s overdue)\n", c.CaseNumber, c.Title, c.DueDate.UTC().Format("2006-01-02"), days(c.DaysOverdue))
	}
	b.WriteString("\nPlease update the due date or move the case forward.\n")
	return b.String()
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
