package config

import (
	"net"
	"strings"
)

var localHosts = map[string]bool{
	"":          true,
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
}

// IsLocalHost reports whether host (optionally with a port) names a local
// development host.
func IsLocalHost(host string) bool {
	h := strings.TrimSpace(host)
	if sh, _, err := net.SplitHostPort(h); err == nil {
		h = sh
	}
	h = strings.Trim(strings.ToLower(h), "[]")
	return localHosts[h]
}

// ResolveBaseURL selects the analysis service URL for the hosting
// environment: the local development server when served from a local host,
// otherwise deployedURL.
func ResolveBaseURL(host, deployedURL string) string {
	if IsLocalHost(host) {
		return DefaultLocalURL
	}
	if deployedURL == "" {
		return DefaultDeployedURL
	}
	return strings.TrimRight(deployedURL, "/")
}
