package config

import "fmt"

// AzureConfig contains Azure AD application configuration for the
// OAuth2 authorization-code flow.
type AzureConfig struct {
	// ClientID is the application (client) ID registered in Azure AD.
	ClientID string `env:"CLIENT_ID,required,notEmpty"`

	// ClientSecret is the client secret for the registered application.
	ClientSecret string `env:"CLIENT_SECRET,required,notEmpty"`

	// AllowedTenant is the directory (tenant) ID users must belong to.
	// Verification only succeeds against this tenant's authority.
	AllowedTenant string `env:"ALLOWED_TENANT,required,notEmpty"`

	// Scope is the space-separated OAuth scope string requested during login.
	Scope string `env:"SCOPE" envDefault:"openid user.read"`
}

// Authority returns the tenant-scoped issuer URL used for OIDC discovery.
// Single tenant authorities have the form
// https://login.microsoftonline.com/{tenant-id}/v2.0.
func (a AzureConfig) Authority() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", a.AllowedTenant)
}
