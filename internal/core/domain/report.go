package domain

import "time"

// Report is a moderation complaint filed by one user against another.
type Report struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ReporterID string    `json:"reporter_id" bson:"reporter_id"`
	ReportedID string    `json:"reported_id" bson:"reported_id"`
	Reason     string    `json:"reason" bson:"reason"`
	Resolved   bool      `json:"resolved" bson:"resolved"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
