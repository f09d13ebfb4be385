package mailer

import (
	"fmt"
	"html"
)

func renderInvitationHTML(email InvitationEmail, link string) string {
	inviter := email.InviterName
	if inviter == "" {
		inviter = "The team"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Join %[1]s on CaterKita</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 24px;">
    <div style="background: #ffffff; border-radius: 8px; padding: 32px; border: 1px solid #eee;">
        <h2 style="color: #d35400; margin-top: 0;">CaterKita</h2>
        <p>%[2]s has invited you to join <strong>%[1]s</strong> as <strong>%[3]s</strong>.</p>
        <p style="text-align: center; margin: 32px 0;">
            <a href="%[4]s" style="background: #d35400; color: #fff; padding: 12px 28px; border-radius: 6px; text-decoration: none;">Accept invitation</a>
        </p>
        <p style="color: #666; font-size: 14px;">If the button does not work, open this link:<br>%[4]s</p>
        <p style="color: #999; font-size: 12px;">If you were not expecting this invitation you can ignore this email.</p>
    </div>
</body>
</html>`,
		html.EscapeString(email.ProviderName),
		html.EscapeString(inviter),
		html.EscapeString(email.Role),
		link,
	)
}
