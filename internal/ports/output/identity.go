package output

// Identity is what the core needs to know about the signed-in user.
type Identity interface {
	IsAuthenticated() bool
	EmployeeID() (int, error)
	IsAdmin() bool
	// AccessToken is sent as the bearer token to the APIs.
	AccessToken() string
}
