package constants

import (
	"fmt"
	"time"
)

// Redis keys follow tourly:{module}:{operation}:{identifier}

const (
	TTL_ACTIVITY_DETAIL = 2 * time.Hour
	TTL_ACTIVITY_LIST   = 15 * time.Minute
)

const (
	CACHE_PREFIX = "tourly"

	CACHE_KEY_ACTIVITIES_LIST     = CACHE_PREFIX + ":activities:list"
	CACHE_KEY_ACTIVITY_DETAIL     = CACHE_PREFIX + ":activities:detail:"
	CACHE_KEY_ADMIN_DASHBOARD     = CACHE_PREFIX + ":analytics:dashboard"
	PATTERN_INVALIDATE_ACTIVITIES = CACHE_PREFIX + ":activities:*"
	PATTERN_INVALIDATE_ANALYTICS  = CACHE_PREFIX + ":analytics:*"

	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

func BuildActivityListKey(page, limit int, category, search string) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:category:%s:q:%s", CACHE_KEY_ACTIVITIES_LIST, page, limit, category, search)
}

func BuildActivityDetailKey(idOrSlug string) string {
	return CACHE_KEY_ACTIVITY_DETAIL + idOrSlug
}
