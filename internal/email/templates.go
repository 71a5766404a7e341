package email

import "fmt"

// OTPEmail builds the verification-code message sent during signup and
// resend. The code expires 10 minutes after issuance.
func OTPEmail(to, otp string) SendParams {
	body := fmt.Sprintf(`
        <h2>Email Verification Code</h2>
        <p>Enter the following OTP to complete your signup:</p>
        <h1 style="color:#4CAF50; font-size:32px;">%s</h1>
        <p>This OTP expires in <strong>10 minutes</strong>.</p>
      `, otp)

	return SendParams{
		To:       to,
		Subject:  "Your OTP Verification Code",
		BodyHTML: body,
	}
}

// FeedbackEmail builds the forwarded feedback message. Reply-To points at the
// submitter so support can answer directly.
func FeedbackEmail(to, name, fromEmail, message string) SendParams {
	body := fmt.Sprintf(`
      <h2>New Feedback Received</h2>
      <p><strong>Name:</strong> %s</p>
      <p><strong>Email:</strong> %s</p>
      <p><strong>Message:</strong></p>
      <p>%s</p>
    `, name, fromEmail, message)

	return SendParams{
		To:       to,
		ReplyTo:  fromEmail,
		Subject:  fmt.Sprintf("New Feedback from %s", name),
		BodyHTML: body,
	}
}
