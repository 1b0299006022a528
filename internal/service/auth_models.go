package service

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthorizeInput struct {
	Email         string
	Password      string
	TwoFactorCode string
	BackupCode    string
}

type TwoFactorSetup struct {
	Secret     string
	OtpauthURL string
}
