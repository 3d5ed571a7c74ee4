package domain

import (
	"fmt"
	"strings"
)

// ProtocolType identifies the upstream protocol a provider speaks.
type ProtocolType string

const (
	ProtocolHAFAS ProtocolType = "hafas"
	ProtocolTRIAS ProtocolType = "trias"
)

// ParseProtocolType parses a protocol name case-insensitively.
func ParseProtocolType(s string) (ProtocolType, error) {
	switch p := ProtocolType(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolHAFAS, ProtocolTRIAS:
		return p, nil
	default:
		return "", fmt.Errorf("invalid client type: %q", s)
	}
}

// Credential keys inside ProviderConfig.Credentials
const (
	CredentialAccessID     = "access_id"
	CredentialRequestorRef = "requestor_ref"
)

// ProviderConfig describes one configured upstream provider.
// Loaded once at startup and never modified afterwards.
type ProviderConfig struct {
	Name               string
	ProtocolType       ProtocolType
	Endpoint           string
	Source             string
	Version            string
	UserAgent          string
	Credentials        map[string]string
	FixAddressEncoding bool
	Validate           bool
	Debug              bool
}

// Credential returns the credential stored under key, or "".
func (c ProviderConfig) Credential(key string) string {
	return c.Credentials[key]
}

// Bounds of five digit postal codes.
const (
	MinPostalCode = 0
	MaxPostalCode = 99999
)

// PostalCodeRange is an inclusive range of numeric postal codes.
type PostalCodeRange struct {
	Start int
	End   int
}

// Validate checks that the range is ordered and lies within
// MinPostalCode..MaxPostalCode.
func (r PostalCodeRange) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("postal code range %d-%d: start after end", r.Start, r.End)
	}
	if r.Start < MinPostalCode || r.End > MaxPostalCode {
		return fmt.Errorf("postal code range %d-%d: outside %05d-%05d", r.Start, r.End, MinPostalCode, MaxPostalCode)
	}
	return nil
}

// Contains reports whether code lies within the range.
func (r PostalCodeRange) Contains(code int) bool {
	return code >= r.Start && code <= r.End
}

// PostalCodeMapping assigns postal code ranges to a provider name.
type PostalCodeMapping struct {
	Provider string
	Ranges   []PostalCodeRange
}
