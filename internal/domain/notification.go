package domain

// Notification is the display pair shown by the OS when the client app is
// backgrounded. The auxiliary data map travels separately and is consumed by
// the running app for deep-linking.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DeliveryResult holds the aggregate outcome of one multicast send. The
// transport does not report per-token granularity in this design.
type DeliveryResult struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}
