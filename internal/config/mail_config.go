package config

type MailConfig interface {
	GetSmtpHost() string
	GetSmtpPort() int
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpRecipient() string
}

type Mail struct{}

var _ MailConfig = Mail{}

func (Mail) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "smtp.gmail.com")
}

func (Mail) GetSmtpPort() int {
	return GetEnvInt("SMTP_PORT", 587)
}

func (Mail) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Mail) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}

// GetSmtpRecipient is the site owner's inbox for contact messages.
func (Mail) GetSmtpRecipient() string {
	return GetEnv("EMAIL_RECIPIENT", "")
}
