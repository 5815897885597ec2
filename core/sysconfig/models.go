// Package sysconfig stores the site's key/value configuration.
// Values are opaque text (usually JSON) and carry no behaviour here.
package sysconfig

import "time"

// Well known keys
const (
	KeySiteIdentity = "site_identity"
	KeyHomeContent  = "home_content"
	KeyAdminMessage = "admin_message"
	KeyThemeConfig  = "theme_config"
	KeyAIPrompt     = "ai_prompt"
)

// PublicKeys may be read without an admin session.
var PublicKeys = []string{KeySiteIdentity, KeyHomeContent, KeyAdminMessage, KeyThemeConfig}

func IsPublic(key string) bool {
	for _, k := range PublicKeys {
		if key == k {
			return true
		}
	}
	return false
}

type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy string    `json:"updatedBy,omitempty"` // identity ID
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Key   string  `json:"key" validate:"required"`
	Value *string `json:"value" validate:"required"`
}
