package store

import "strings"

// LayoutVersion is the on-device layout written by Migrate.
const LayoutVersion = "2"

const (
	keyPrefix = "seowatch:"

	KeyVersion    = keyPrefix + "version"
	KeySession    = keyPrefix + "session"
	KeyUserIndex  = keyPrefix + "users"
	KeyLegacyUser = keyPrefix + "user"

	identityPrefix  = keyPrefix + "identity:"
	reportsPrefix   = keyPrefix + "reports:"
	contentPrefix   = keyPrefix + "content:"
	resourcesPrefix = keyPrefix + "resources:"
	syncedPrefix    = keyPrefix + "synced:"
)

const (
	// MaxScanReports caps the per-owner report list.
	MaxScanReports = 50
	// MaxContentItems caps the per-owner generated content list.
	MaxContentItems = 100
)

func IdentityKey(id string) string        { return identityPrefix + id }
func ScanReportsKey(owner string) string  { return reportsPrefix + owner }
func ContentKey(owner string) string      { return contentPrefix + owner }
func ResourcesKey(owner string) string    { return resourcesPrefix + owner }
func RemoteSyncedKey(owner string) string { return syncedPrefix + owner }

// AffectsIdentity reports whether a write to key can change which identity is
// current or what it looks like.
func AffectsIdentity(key string) bool {
	return key == KeySession || key == KeyUserIndex || strings.HasPrefix(key, identityPrefix)
}
