package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// guardTTL bounds how long a pair key can linger if a Release is lost (e.g.
// process crash between create and cleanup). The authoritative duplicate
// check is the connection collection itself; the guard only has to cover the
// concurrent window, so a generous expiry is safe.
const guardTTL = 24 * time.Hour

// PairGuard serialises connection-request creation per (client, therapist)
// pair with a SET NX key, closing the window in which two concurrent
// requests could both pass the duplicate check.
// Key format: pair:<client_id>:<therapist_id>
type PairGuard struct {
	client *redis.Client
}

// NewPairGuard creates a PairGuard wrapping the given Redis client.
func NewPairGuard(client *redis.Client) *PairGuard {
	return &PairGuard{client: client}
}

// Acquire claims the pair. Returns false when another request already holds it.
func (g *PairGuard) Acquire(ctx context.Context, clientID, therapistID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(clientID, therapistID), "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("pair guard acquire: %w", err)
	}
	return ok, nil
}

// Release frees the pair so a future request may be created after removal.
func (g *PairGuard) Release(ctx context.Context, clientID, therapistID string) error {
	if err := g.client.Del(ctx, g.key(clientID, therapistID)).Err(); err != nil {
		return fmt.Errorf("pair guard release: %w", err)
	}
	return nil
}

func (g *PairGuard) key(clientID, therapistID string) string {
	return fmt.Sprintf("pair:%s:%s", clientID, therapistID)
}
