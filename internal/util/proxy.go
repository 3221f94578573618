package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// Hosts matching noProxy (comma-separated suffixes) bypass the proxy.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	skip := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostExcluded(req.URL.Hostname(), skip) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseNoProxy(noProxy string) []string {
	var hosts []string
	for _, h := range strings.Split(noProxy, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func hostExcluded(host string, skip []string) bool {
	for _, s := range skip {
		if host == s || strings.HasSuffix(host, "."+strings.TrimPrefix(s, ".")) {
			return true
		}
	}
	return false
}
