package cannon

// ListOptions provides filtering options for listing cannons.
type ListOptions struct {
	Author string
	Limit  int
	Offset int
}
