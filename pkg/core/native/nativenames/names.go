package nativenames

// Names of all built-in contracts.
const (
	Management = "Management"
	Token      = "Token"
	Vesting    = "Vesting"
)

// IsValid checks if the name is a valid built-in contract's name.
func IsValid(name string) bool {
	return name == Management ||
		name == Token ||
		name == Vesting
}
