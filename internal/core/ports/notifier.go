package ports

import "context"

// Notification is one outbound transactional email.
type Notification struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Notifier delivers a single notification synchronously.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationEnqueuer hands a notification to the async delivery pipeline.
// Enqueue must never block the caller's request path for long and must never
// surface delivery failures to it.
type NotificationEnqueuer interface {
	Enqueue(n Notification)
}

// DiscoveryService surfaces therapists to clients who have no existing
// connection with them.
type DiscoveryService interface {
	Search(ctx context.Context, in DiscoverySearchInput) ([]TherapistCard, error)
}

// DiscoverySearchInput carries the client-facing search parameters.
type DiscoverySearchInput struct {
	ClientID string
	Gender   string
	TagIDs   []string
	Name     string
	Limit    int64
	Offset   int64
}

// TherapistCard is the public projection returned by discovery search.
type TherapistCard struct {
	ID                string   `json:"id"`
	FirstName         string   `json:"firstname"`
	LastName          string   `json:"lastname"`
	Gender            string   `json:"gender,omitempty"`
	PhotoURL          string   `json:"photo_url,omitempty"`
	Description       string   `json:"description,omitempty"`
	ExperiencedIn     []string `json:"experienced_in,omitempty"`
	YearsOfExperience int      `json:"years_of_experience,omitempty"`
}
