// Package config reads the environment variables used as defaults by the
// session and token storage layers.
package config

import "os"

const (
	clientIDVar     = "HMRC_CLIENT_ID"
	clientSecretVar = "HMRC_CLIENT_SECRET"
	serverTokenVar  = "HMRC_SERVER_TOKEN"
	tokenFileVar    = "HMRC_TOKEN_FILE"
)

// GetEnv returns the value of an environment variable, falling back to
// defaultValue when the variable is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ClientID returns the client ID issued by HMRC for this application.
func ClientID() string {
	return GetEnv(clientIDVar, "")
}

// ClientSecret returns the client secret associated with the client ID.
func ClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

// ServerToken returns an application-restricted access token, if one has
// been provisioned out of band.
func ServerToken() string {
	return GetEnv(serverTokenVar, "")
}

// TokenFile returns an override path for the token storage file.
func TokenFile() string {
	return GetEnv(tokenFileVar, "")
}
