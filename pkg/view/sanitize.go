package view

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	defaultPolicyOnce sync.Once
	defaultPolicy     *bluemonday.Policy
)

// Sanitize strips markup the configured policy does not allow. Without
// WithSanitizer the bluemonday UGC policy is used.
func (c *Context) Sanitize(html string) string {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return ""
	}
	policy := c.policy
	if policy == nil {
		policy = ugcSanitizer()
	}
	return policy.Sanitize(trimmed)
}

func ugcSanitizer() *bluemonday.Policy {
	defaultPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		defaultPolicy = policy
	})
	return defaultPolicy
}
