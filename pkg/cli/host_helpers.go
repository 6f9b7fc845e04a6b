package cli

import (
	"net"
	"strings"
)

const defaultCurlHost = "localhost:8080"

// curlHostForListenAddr turns a listen address into a host:port an operator
// can paste into curl. Wildcard and empty hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return defaultCurlHost
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
