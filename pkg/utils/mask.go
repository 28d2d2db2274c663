package utils

import (
	"regexp"
	"strings"
)

var dsnPasswordRegex = regexp.MustCompile(`(:)([^:@/]+)(@)`)

// MaskDSN hides the password component of a connection string.
func MaskDSN(dsn string) string {
	return dsnPasswordRegex.ReplaceAllString(dsn, ":***@")
}

// MaskAddress keeps the first six and last four characters of a wallet address.
func MaskAddress(addr string) string {
	if len(addr) <= 10 {
		return strings.Repeat("*", len(addr))
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// MaskIP drops the host part of an IPv4 address ("81.2.69.160" -> "81.2.69.x").
// IPv6 addresses keep only their first two groups.
func MaskIP(ip string) string {
	if i := strings.LastIndex(ip, "."); i > 0 && !strings.Contains(ip, ":") {
		return ip[:i] + ".x"
	}
	if parts := strings.Split(ip, ":"); len(parts) > 2 {
		return parts[0] + ":" + parts[1] + ":x"
	}
	return ip
}
