package api

// Backend endpoint paths, relative to the configured API base URL.
// All paths are defined here to ensure consistency and prevent typos.
const (
	// Core auth endpoints
	EndpointRegister            = "/core/register/"
	EndpointLogin               = "/core/login/"
	EndpointLogout              = "/core/logout/"
	EndpointSession             = "/core/session/"
	EndpointCompleteOnboarding  = "/core/complete-onboarding/"
	EndpointSetupCompanyProfile = "/core/setup-company-profile/"
	EndpointGoogleOAuth         = "/core/oauth/google/"

	// Farms
	EndpointAssets = "/farms/assets/"

	// Data import
	EndpointUploads = "/data-import/uploads/"
)

// Request headers attached by the outbound decorator.
const (
	HeaderAuthorization = "Authorization"
	HeaderTenantSlug    = "X-Tenant-Slug"
	HeaderRequestID     = "X-Request-ID"
)
