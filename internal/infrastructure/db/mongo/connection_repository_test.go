package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// matchStageFor returns the value of the first $match stage constraining the
// given field, or nil when no stage does.
func matchStageFor(t *testing.T, stages []bson.D, field string) any {
	t.Helper()
	for _, stage := range stages {
		if len(stage) != 1 || stage[0].Key != "$match" {
			continue
		}
		doc, ok := stage[0].Value.(bson.D)
		if !ok {
			continue
		}
		for _, e := range doc {
			if e.Key == field {
				return e.Value
			}
		}
	}
	return nil
}

func hasStage(stages []bson.D, op string) bool {
	for _, stage := range stages {
		if len(stage) == 1 && stage[0].Key == op {
			return true
		}
	}
	return false
}

func TestTherapistListingTail_ExcludesBlockedClients(t *testing.T) {
	tail := therapistListingTail(ports.ConnectionPage{Limit: 10, Offset: 1})

	got := matchStageFor(t, tail, "client.blocked_by_admin")
	if got == nil {
		t.Fatal("therapist listing has no match stage on client.blocked_by_admin")
	}
	want := bson.D{{Key: "$ne", Value: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("blocked-client match = %v, want %v", got, want)
	}
}

func TestClientListingTail_ExcludesBlockedTherapistsAndSamples(t *testing.T) {
	tail := clientListingTail(ports.ConnectionPage{Limit: 10, Offset: 1})

	got := matchStageFor(t, tail, "therapist.blocked_by_admin")
	want := bson.D{{Key: "$ne", Value: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("blocked-therapist match = %v, want %v", got, want)
	}
	if !hasStage(tail, "$sample") {
		t.Fatal("client listing lost its sample stage")
	}
}

func TestPageSkip(t *testing.T) {
	cases := []struct {
		name string
		page ports.ConnectionPage
		want int64
	}{
		{"first page", ports.ConnectionPage{Limit: 10, Offset: 1}, 0},
		{"second page", ports.ConnectionPage{Limit: 10, Offset: 2}, 10},
		{"zero offset clamps", ports.ConnectionPage{Limit: 10, Offset: 0}, 0},
		{"negative offset clamps", ports.ConnectionPage{Limit: 10, Offset: -3}, 0},
		{"zero limit", ports.ConnectionPage{Limit: 0, Offset: 5}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pageSkip(tc.page); got != tc.want {
				t.Fatalf("pageSkip(%+v) = %d, want %d", tc.page, got, tc.want)
			}
		})
	}
}

func TestPageLimit(t *testing.T) {
	if got := pageLimit(ports.ConnectionPage{Limit: 25}); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := pageLimit(ports.ConnectionPage{}); got != sampleSize {
		t.Fatalf("expected sample default %d, got %d", sampleSize, got)
	}
	if got := pageLimit(ports.ConnectionPage{Limit: -1}); got != sampleSize {
		t.Fatalf("expected sample default for negative limit, got %d", got)
	}
}
