package config

import (
	"os"
	"strings"
)

// Environment variables holding credentials for external services.
const (
	CrunchbaseAPIKeyEnv = "CRUNCHBASE_API_KEY"
	GithubTokensEnv     = "GITHUB_TOKENS"
)

// Credentials for the external data collectors. Built once per build and
// shared read-only by the collectors.
type Credentials struct {
	CrunchbaseAPIKey string
	GithubTokens     []string
}

// LookupFunc matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ReadCredentials reads external services credentials using lookup. A nil
// lookup reads the process environment.
func ReadCredentials(lookup LookupFunc) *Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	creds := &Credentials{}
	if key, ok := lookup(CrunchbaseAPIKeyEnv); ok {
		creds.CrunchbaseAPIKey = key
	}
	if raw, ok := lookup(GithubTokensEnv); ok {
		for _, token := range strings.Split(raw, ",") {
			if token != "" {
				creds.GithubTokens = append(creds.GithubTokens, token)
			}
		}
	}
	return creds
}

// HasCrunchbaseAPIKey reports whether a Crunchbase API key is available.
func (c *Credentials) HasCrunchbaseAPIKey() bool {
	return c != nil && c.CrunchbaseAPIKey != ""
}

// HasGithubTokens reports whether at least one GitHub token is available.
func (c *Credentials) HasGithubTokens() bool {
	return c != nil && len(c.GithubTokens) > 0
}
