// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains transport-level failures (the backend could not
// be reached at all) in user terms.
package httperrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is the kind of network failure.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	ServerError
)

// Classify detects the network failure behind err.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Generic
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isTLSError(err):
		return TLS
	case isServerError(err.Error()):
		return ServerError
	default:
		return Generic
	}
}

// FormatNetworkError prints a troubleshooting message for err and returns it wrapped.
// host names the backend in the message; context says what the CLI was doing.
func FormatNetworkError(err error, context, host string) error {
	if err == nil {
		return nil
	}
	title, lines := Describe(Classify(err), context, host)
	pterm.Println(title)
	pterm.Println()
	for _, l := range lines {
		pterm.Println(l)
	}
	pterm.Println()
	return err
}

// Describe returns the title and body lines shown for a category.
func Describe(c Category, context, host string) (string, []string) {
	if host == "" {
		host = "the backend"
	}
	switch c {
	case Timeout:
		return "⏱️  Connection timeout while " + context, []string{
			"The backend took too long to respond. This could mean:",
			"  • Slow internet connection",
			"  • The backend is under heavy load",
			"  • Network firewall is blocking the connection",
		}
	case DNS:
		return "🌐 Cannot resolve server address while " + context, []string{
			"Unable to look up " + host + ". Please check:",
			"  • The configured URL is spelled correctly",
			"  • Your internet connection is working",
			"  • DNS settings are correct",
		}
	case ConnectionRefused:
		return "🚫 Connection refused while " + context, []string{
			host + " is not accepting connections. This could mean:",
			"  • The backend is temporarily down",
			"  • Wrong server address or port",
			"  • Firewall is blocking the connection",
		}
	case TLS:
		return "🔒 Secure connection failed while " + context, []string{
			"Cannot establish a secure connection to " + host + ". This could mean:",
			"  • SSL/TLS certificate issue",
			"  • Network proxy interfering with HTTPS",
			"  • System clock is incorrect",
		}
	case ServerError:
		return "⚠️  Server error while " + context, []string{
			host + " encountered an internal error.",
			"  • This is not a problem with your setup",
			"  • Please try again in a few minutes",
		}
	default:
		return "❌ Cannot reach " + host + " while " + context, []string{
			"Please check:",
			"  • Your internet connection",
			"  • Whether " + host + " is accessible from your network",
			"  • Firewall settings that might block the connection",
		}
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{" 500 ", " 502 ", " 503 ", " 504 ", "internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}
