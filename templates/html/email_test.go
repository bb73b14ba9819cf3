package templates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	templates "github.com/linesmerrill/accident-recon-api/templates/html"
)

func TestRenderGenericEmail(t *testing.T) {
	out := templates.RenderGenericEmail("Status <update>", "line one\nline <b>two</b>")

	assert.Contains(t, out, "<title>Status &lt;update&gt;</title>")
	assert.Contains(t, out, "line one<br>line &lt;b&gt;two&lt;/b&gt;")
	assert.Contains(t, out, "width: 100%;")
}

func TestRenderOverdueCasesEmail(t *testing.T) {
	cases := []templates.OverdueCase{
		{CaseNumber: "ACC-2024-00001", Title: "Rear-end <Route 9>", DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DaysOverdue: 13},
		{CaseNumber: "ACC-2024-00002", Title: "Side swipe", DueDate: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), DaysOverdue: 1},
	}

	out := templates.RenderOverdueCasesEmail("Dana", cases)

	assert.Contains(t, out, "<title>2 investigation cases are past due</title>")
	assert.Contains(t, out, "Hi Dana,")
	assert.Contains(t, out, "Rear-end &lt;Route 9&gt;")
	assert.Contains(t, out, "Mar 1, 2024")
	assert.Contains(t, out, "13 days")
	assert.Contains(t, out, "1 day<")

	text := templates.RenderOverdueCasesText("Dana", cases)
	assert.Contains(t, text, "- ACC-2024-00001 Rear-end <Route 9> (due 2024-03-01, 13 days overdue)")
	assert.Equal(t, "1 investigation case is past due", templates.OverdueSubject(1))
}
