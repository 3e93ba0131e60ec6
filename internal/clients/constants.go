package clients

import "time"

const (
	MAX_RETRIES   = 3
	RETRY_BACKOFF = 250 * time.Millisecond

	VALKEY_RESULT_KEY_PREFIX = "kyokan:result:"
	VALKEY_RESULT_INDEX_KEY  = "kyokan:results"
)
