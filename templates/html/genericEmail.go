package templates

import (
	"fmt"
	"html"
	"strings"
)

const layout = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f3f4f6; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: #1f2937; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #111827; line-height: 1.6; font-size: 15px; }
    .content table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
    .content th { text-align: left; border-bottom: 2px solid #d1d5db; padding: 8px; font-size: 13px; color: #4b5563; }
    .content td { border-bottom: 1px solid #e5e7eb; padding: 8px; font-size: 14px; }
    .overdue { color: #b91c1c; font-weight: 600; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>Accident Reconstruction Records. This message was sent automatically.</p>
    </div>
  </div>
</body>
</html>`

// RenderGenericEmail wraps plain text in the branded layout. The body is
// HTML-escaped and newlines become <br> tags.
func RenderGenericEmail(subject, bodyContent string) string {
	escaped := html.EscapeString(bodyContent)
	return render(subject, strings.ReplaceAll(escaped, "\n", "<br>"))
}

// render places already-escaped HTML into the layout
func render(subject, htmlBody string) string {
	safeSubject := html.EscapeString(subject)
	return fmt.Sprintf(layout, safeSubject, safeSubject, htmlBody)
}
