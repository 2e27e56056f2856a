package entra

import (
	"net/url"
	"strings"
)

// Resource URLs for the audiences the console works with most.
const (
	AudienceGraph      = "https://graph.microsoft.com"
	AudienceAADGraph   = "https://graph.windows.net"
	AudienceARM        = "https://management.azure.com"
	AudienceKeyVault   = "https://vault.azure.net"
	AudienceOutlook    = "https://outlook.office365.com"
	AudienceSharePoint = "https://microsoft.sharepoint.com"
	AudienceSkype      = "https://api.spaces.skype.com"
	AudienceStorage    = "https://storage.azure.com"
	AudienceDevOps     = "https://app.vssps.visualstudio.com"
)

// resourceAliases maps first-party resource application IDs, which the token
// endpoint sometimes emits as aud, to the resource URL they stand for.
var resourceAliases = map[string]string{
	"cfa8b339-82a2-471a-a3c9-0fc0be7a4093": AudienceKeyVault,
	"00000003-0000-0000-c000-000000000000": AudienceGraph,
	"00000002-0000-0000-c000-000000000000": AudienceAADGraph,
	"797f4846-ba00-4fd7-ba43-dac1f8f63013": AudienceARM,
	"00000002-0000-0ff1-ce00-000000000000": AudienceOutlook,
	"00000003-0000-0ff1-ce00-000000000000": AudienceSharePoint,
	"e406a681-f3d4-42a8-90b6-c2b029497af1": AudienceStorage,
	"499b84ac-1321-427f-aa17-267ca6975798": AudienceDevOps,
}

// resourceURLAliases maps older resource URLs to the one the console stores.
// Azure CLI and PowerShell still mint ARM tokens for the classic endpoint.
var resourceURLAliases = map[string]string{
	"https://management.core.windows.net": AudienceARM,
}

const defaultScopeSuffix = "/.default"

// KnownAudience is an entry in the availability report.
type KnownAudience struct {
	Key      string `json:"key"`
	Resource string `json:"resource"`
}

// KnownAudiences returns the audiences reported by the availability surface.
func KnownAudiences() []KnownAudience {
	return []KnownAudience{
		{Key: "ms_graph", Resource: AudienceGraph},
		{Key: "aad_graph", Resource: AudienceAADGraph},
		{Key: "azure_mgmt", Resource: AudienceARM},
		{Key: "key_vault", Resource: AudienceKeyVault},
		{Key: "outlook", Resource: AudienceOutlook},
		{Key: "sharepoint", Resource: AudienceSharePoint},
		{Key: "skype", Resource: AudienceSkype},
	}
}

// ResourceForAlias returns the resource URL a first-party resource app ID
// stands for.
func ResourceForAlias(guid string) (string, bool) {
	r, ok := resourceAliases[normalizeClientID(guid)]
	return r, ok
}

// NormalizeAudience turns an aud value into a resource URL. scopeHint is the
// scope that was requested when the token was minted, or "" when unknown.
//
//  1. Absolute URLs come back with trailing slashes removed, with legacy
//     resource URLs replaced by their current form.
//  2. Known resource app IDs map to their resource URL.
//  3. A scope hint ending in "/.default" yields the part before the suffix.
//  4. A scope hint that is itself an absolute URL is used as-is.
//  5. Anything else is returned unchanged and should be treated as
//     unverified by the caller.
func NormalizeAudience(raw, scopeHint string) string {
	raw = strings.TrimSpace(raw)
	if isAbsoluteURL(raw) {
		return canonicalURL(raw)
	}

	if resource, ok := ResourceForAlias(raw); ok {
		return resource
	}

	// Multi-scope strings ("x/.default offline_access") hint with their first
	// scope.
	hint := ""
	if fields := strings.Fields(scopeHint); len(fields) > 0 {
		hint = fields[0]
	}

	if resource, ok := strings.CutSuffix(hint, defaultScopeSuffix); ok && resource != "" {
		return canonicalURL(resource)
	}
	if isAbsoluteURL(hint) {
		return canonicalURL(hint)
	}

	return raw
}

func canonicalURL(u string) string {
	u = strings.TrimRight(u, "/")
	if current, ok := resourceURLAliases[strings.ToLower(u)]; ok {
		return current
	}
	return u
}

// DefaultScope returns the "{resource}/.default" scope for an audience.
func DefaultScope(audience string) string {
	return strings.TrimRight(audience, "/") + defaultScopeSuffix
}

// IsNormalized reports whether aud is a resource URL rather than a GUID or
// other unmapped value.
func IsNormalized(aud string) bool {
	return isAbsoluteURL(aud) && !strings.HasSuffix(aud, "/")
}

func isAbsoluteURL(s string) bool {
	if !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "http://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}
