// Package pwstrength gives the CLI an advisory strength rating for a
// freshly chosen master password. It never blocks Create or
// RotatePassword — Argon2id's cost parameters are the actual defense,
// this is purely a hint to the person typing the password.
package pwstrength

// Strength rates a candidate master password.
type Strength int

const (
	Weak Strength = iota
	Fair
	Good
	Strong
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "Weak"
	case Fair:
		return "Fair"
	case Good:
		return "Good"
	case Strong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// Rate scores a password by length alone, per NIST SP 800-63B: length is
// the dominant factor for human-chosen passwords, and composition rules
// (forced uppercase/digit/symbol) are explicitly discouraged.
func Rate(password string) Strength {
	switch length := len(password); {
	case length >= 20:
		return Strong
	case length >= 14:
		return Good
	case length >= 8:
		return Fair
	default:
		return Weak
	}
}
