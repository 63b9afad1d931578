package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "wordrooms"

// summaryKey returns the Redis key for a GameSummary
func summaryKey(id string) string {
	return fmt.Sprintf("%s:summary:%s", keyPrefix, id)
}

// summariesIndexKey returns the Redis key for the ZSET of summary IDs scored by end time
func summariesIndexKey() string {
	return fmt.Sprintf("%s:idx:summaries", keyPrefix)
}

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
