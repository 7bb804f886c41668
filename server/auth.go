package server

// Auth selects how connecting clients are authenticated.
type Auth int

// Offline accepts clients without verifying their identity.
const Offline Auth = 0

func (a Auth) String() string {
	if a == Offline {
		return "offline"
	}
	return "unknown"
}
