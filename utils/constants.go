// File: utils/constants.go
package utils

import "time"

// RoleCachePrefix is the prefix used for Redis directory-role cache keys.
const RoleCachePrefix = "role:"

// RoleCacheTTL is the time-to-live for directory-role cache entries.
const RoleCacheTTL = 10 * time.Minute
