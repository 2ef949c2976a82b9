package auth

// Claims representa la información firmada dentro del token.
type Claims struct {
	UserID string
	Role   string
}

// Identity es el usuario ya resuelto contra el store, adjuntado al request.
type Identity struct {
	UserID string
	Email  string
	Role   string
}
