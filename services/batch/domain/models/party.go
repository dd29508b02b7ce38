package models

import (
	"fmt"
	"strings"
)

// Party is the canonical identity of a supply-chain participant: a trimmed,
// lower-cased email. Normalization happens once, in NewParty, so balance
// replay can compare parties with plain equality.
type Party string

// UnknownCustomer is the recipient recorded for sales without a customer email.
const UnknownCustomer Party = "unknown-customer"

const maxPartyLength = 254

// NewParty normalizes and validates an email identity.
func NewParty(email string) (Party, error) {
	s := strings.ToLower(strings.TrimSpace(email))
	if s == "" {
		return "", fmt.Errorf("party email is required")
	}
	if len(s) > maxPartyLength {
		return "", fmt.Errorf("party email must not exceed %d characters", maxPartyLength)
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return "", fmt.Errorf("party email must not contain whitespace")
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') || at == len(s)-1 {
		return "", fmt.Errorf("party email %q is malformed", email)
	}
	return Party(s), nil
}

// String returns the underlying string value.
func (p Party) String() string {
	return string(p)
}

// Role is the closed set of supply-chain roles supplied by the identity provider.
type Role string

const (
	RoleManufacturer Role = "MANUFACTURER"
	RoleDistributor  Role = "DISTRIBUTOR"
	RolePharmacy     Role = "PHARMACY"
	RoleCustomer     Role = "CUSTOMER"
	RoleAdmin        Role = "ADMIN"
)

// ParseRole maps a role name (any case) onto the Role enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleManufacturer, RoleDistributor, RolePharmacy, RoleCustomer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// String returns the underlying string value.
func (r Role) String() string {
	return string(r)
}

// Principal is the authenticated caller as supplied by the identity provider.
type Principal struct {
	Party Party
	Role  Role
}

// NewPrincipal builds a Principal from raw identity-provider values.
func NewPrincipal(email, role string) (Principal, error) {
	p, err := NewParty(email)
	if err != nil {
		return Principal{}, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Party: p, Role: r}, nil
}
