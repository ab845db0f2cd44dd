package common

import (
	"context"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the shared client used for the change streams and
// the backfill lock. Connection settings come from REDIS_HOST, REDIS_PORT,
// REDIS_PASSWORD and REDIS_DB; defaults suit local development.
func NewRedisClient() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	dbNum := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			dbNum = n
		}
	}

	addr := net.JoinHostPort(host, port)
	log.Printf("[Redis] Connecting: addr=%s db=%d", addr, dbNum)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           dbNum,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Return the client anyway; the pool reconnects once Redis is up,
		// and the stream consumers tolerate a late start.
		log.Printf("[Redis] Ping failed: %v", err)
		return client
	}

	log.Printf("[Redis] Connected")
	return client
}
