package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	CannonID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
