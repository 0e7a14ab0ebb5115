package verify

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/mcpdex/mcpdex/internal/errors"
)

// reservedSuffixes are domain suffixes that can never be publicly verified.
var reservedSuffixes = []string{".local", ".internal", ".lan"}

// labelPattern enforces RFC-style label rules: alphanumeric with interior hyphens.
var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// ValidateDomain checks that domain is a publicly verifiable DNS name.
// It rejects localhost, bare IP addresses, reserved suffixes and malformed labels.
// The returned domain is normalized (lowercase, trailing dot stripped).
func ValidateDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")

	if d == "" {
		return "", fmt.Errorf("%w: domain is required", errors.ErrInvalidDomain)
	}
	if len(d) > maxDomainLength {
		return "", fmt.Errorf("%w: domain exceeds %d characters", errors.ErrInvalidDomain, maxDomainLength)
	}
	if d == "localhost" {
		return "", fmt.Errorf("%w: localhost cannot be registered", errors.ErrInvalidDomain)
	}
	if ip := net.ParseIP(d); ip != nil {
		return "", fmt.Errorf("%w: bare IP addresses cannot be registered", errors.ErrInvalidDomain)
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(d, suffix) {
			return "", fmt.Errorf("%w: reserved suffix '%s'", errors.ErrInvalidDomain, suffix)
		}
	}

	labels := strings.Split(d, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("%w: domain must contain at least two labels", errors.ErrInvalidDomain)
	}
	for _, label := range labels {
		if len(label) > maxLabelLength {
			return "", fmt.Errorf("%w: label '%s' exceeds %d characters", errors.ErrInvalidDomain, label, maxLabelLength)
		}
		if !labelPattern.MatchString(label) {
			return "", fmt.Errorf("%w: invalid label '%s'", errors.ErrInvalidDomain, label)
		}
	}

	return d, nil
}

// ValidateEndpoint checks that endpoint is an https URL whose host is not a
// loopback, private or otherwise unroutable address.
func ValidateEndpoint(endpoint string) (string, error) {
	e := strings.TrimSpace(endpoint)
	if e == "" {
		return "", fmt.Errorf("%w: endpoint is required", errors.ErrInsecureEndpoint)
	}

	u, err := url.Parse(e)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInsecureEndpoint, err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("%w: endpoint must use https, got '%s'", errors.ErrInsecureEndpoint, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: endpoint is missing a host", errors.ErrInsecureEndpoint)
	}
	if host == "localhost" {
		return "", fmt.Errorf("%w: endpoint host cannot be localhost", errors.ErrInsecureEndpoint)
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return "", fmt.Errorf("%w: endpoint host has reserved suffix '%s'", errors.ErrInsecureEndpoint, suffix)
		}
	}
	if ip := net.ParseIP(host); ip != nil && !isPubliclyRoutable(ip) {
		return "", fmt.Errorf("%w: endpoint host resolves to a non-routable address", errors.ErrInsecureEndpoint)
	}

	return e, nil
}

// ValidateContactEmail checks the contact address is a parseable mailbox.
func ValidateContactEmail(email string) (string, error) {
	e := strings.TrimSpace(email)
	if e == "" {
		return "", fmt.Errorf("%w: contact_email is required", errors.ErrBadRequest)
	}
	addr, err := mail.ParseAddress(e)
	if err != nil {
		return "", fmt.Errorf("%w: invalid contact_email: %v", errors.ErrBadRequest, err)
	}
	return addr.Address, nil
}

func isPubliclyRoutable(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast())
}
