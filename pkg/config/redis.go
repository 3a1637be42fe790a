package config

import (
	"fmt"

	"github.com/redis/rueidis"
)

// InitRedis creates the Redis client backing the chat broadcast backplane.
// Only needed when running more than one gateway instance.
func InitRedis(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		ClientName:  "forkful-social",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	return client, nil
}
