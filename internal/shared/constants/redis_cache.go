package constants

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Redis key layout: triptrek:{module}:{kind}:{identifier}

const (
	CACHE_PREFIX = "triptrek"
)

const (
	TTL_DYNAMIC_QUICK = 2 * time.Minute
)

// Catalog
const (
	CACHE_KEY_PACKAGE_DETAIL = CACHE_PREFIX + ":catalog:package:uuid:" // + package-id

	// Package rows carry available_slots, so keep them short lived
	TTL_PACKAGE_DETAIL = TTL_DYNAMIC_QUICK
)

// Payments
const (
	LOCK_KEY_PAYMENT_ORDER = CACHE_PREFIX + ":payments:order_lock:booking:" // + booking-id
)

// Rate limiting
const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

func BuildPackageDetailKey(packageID uuid.UUID) string {
	return CACHE_KEY_PACKAGE_DETAIL + packageID.String()
}

func BuildPaymentOrderLockKey(bookingID uuid.UUID) string {
	return LOCK_KEY_PAYMENT_ORDER + bookingID.String()
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("%s:%s:%s", RATE_LIMIT_PREFIX, clientIP, limitType)
}
