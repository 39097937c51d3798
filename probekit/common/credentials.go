package common

// Credentials holds everything needed to authenticate against a host, both
// for the SSH transport and for privilege escalation once connected.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}
