package services

// Actor is the user performing an operation.
type Actor struct {
	ID   string
	Name string
}
