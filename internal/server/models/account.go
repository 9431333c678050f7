package models

import "time"

// Account is a registered user. PasswordHash holds an encoded argon2id (or
// legacy bcrypt) hash, never the plaintext.
type Account struct {
	ID           string
	Nickname     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
