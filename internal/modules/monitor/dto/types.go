package dto

// Check is one setup validation result.
type Check struct {
	Name    string
	OK      bool
	Fatal   bool
	Message string
}
