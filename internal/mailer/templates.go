package mailer

import "fmt"

// VerificationEmail renders the invite/verification message. The link
// carries the verification token as a query parameter.
func VerificationEmail(to, verificationLink string) Message {
	return Message{
		To:      to,
		Subject: "Verify your TeamBoard email",
		HTML: fmt.Sprintf(`<p>Welcome to TeamBoard!</p>
<p>Please verify your email address by clicking the link below:</p>
<p><a href=%q>Verify email</a></p>
<p>Once verified, you can complete your profile and log in.</p>
<p>If you did not expect this invitation, you can ignore this email.</p>`, verificationLink),
	}
}

// PasswordResetEmail renders the password reset message. The link expires
// one hour after the reset was requested.
func PasswordResetEmail(to, resetLink string) Message {
	return Message{
		To:      to,
		Subject: "Reset your TeamBoard password",
		HTML: fmt.Sprintf(`<p>A password reset was requested for your TeamBoard account.</p>
<p><a href=%q>Reset password</a></p>
<p>This link expires in one hour.</p>
<p>If you did not request a reset, you can ignore this email.</p>`, resetLink),
	}
}
