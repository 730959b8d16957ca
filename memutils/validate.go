package memutils

// Validatable is anything that can check its own consistency, such as a memory layout
type Validatable interface {
	Validate() error
}
