package redisx

import "time"

const (
	// Singleton site_config cache (read on nearly every page).
	KeySiteConfig = "site_config"

	// Gift catalog cache, invalidated on any catalog write.
	KeyGiftCatalog = "gifts:catalog"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLConfigCache = 5 * time.Minute
	TTLGiftCache   = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
