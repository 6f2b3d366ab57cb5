package outbound

type PasswordService interface {
	HashPassword(password string) (string, error)
	// VerifyPassword reports whether password matches hash; a mismatch is not an error
	VerifyPassword(password, hash string) (bool, error)
}
