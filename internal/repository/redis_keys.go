package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// redisKeys builds namespaced keys so several deployments can share one Redis.
type redisKeys struct {
	prefix string
}

func newRedisKeys(prefix string) redisKeys {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "peerroom"
	}
	return redisKeys{prefix: prefix}
}

func (k redisKeys) eventSeq() string { return k.prefix + ":events:seq" }
func (k redisKeys) event(id string) string { return fmt.Sprintf("%s:event:%s", k.prefix, id) }
func (k redisKeys) eventDay(day string) string { return fmt.Sprintf("%s:events:day:%s", k.prefix, day) }
func (k redisKeys) eventsByDate() string { return k.prefix + ":events:by_date" }
func (k redisKeys) rooms() string { return k.prefix + ":rooms" }
func (k redisKeys) roomOrder() string { return k.prefix + ":rooms:order" }
func (k redisKeys) draft(session string) string {
	return fmt.Sprintf("%s:draft:%s", k.prefix, session)
}
func (k redisKeys) settings() string { return k.prefix + ":settings" }

// dayScore maps YYYY-MM-DD onto a sortable integer score (20260215).
func dayScore(day string) float64 {
	n, err := strconv.Atoi(strings.ReplaceAll(day, "-", ""))
	if err != nil {
		return 0
	}
	return float64(n)
}

func formatRedisTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseRedisTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
