package session

import (
	"errors"
	"strings"
)

// Role is the closed set of staff roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSecretary Role = "secretaria"
)

// ErrInvalidRole is returned for anything outside the closed role set.
var ErrInvalidRole = errors.New("role must be one of: admin, secretaria")

// ParseRole maps a stored or submitted role string onto the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSecretary:
		return RoleSecretary, nil
	default:
		return "", ErrInvalidRole
	}
}

// Capability names an action a role may be allowed to perform.
type Capability int

const (
	RegisterVisitors Capability = iota + 1
	ViewVisitors
	UpdateVisitorStatus
	LookupCEP
	DeleteVisitors
	ExportVisitors
	ViewDashboard
	ManageUsers
	RunBackfill
)

var capabilityNames = map[Capability]string{
	RegisterVisitors:    "register_visitors",
	ViewVisitors:        "view_visitors",
	UpdateVisitorStatus: "update_visitor_status",
	LookupCEP:           "lookup_cep",
	DeleteVisitors:      "delete_visitors",
	ExportVisitors:      "export_visitors",
	ViewDashboard:       "view_dashboard",
	ManageUsers:         "manage_users",
	RunBackfill:         "run_backfill",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

var secretaryCapabilities = map[Capability]bool{
	RegisterVisitors:    true,
	ViewVisitors:        true,
	UpdateVisitorStatus: true,
	LookupCEP:           true,
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin:
		_, known := capabilityNames[c]
		return known
	case RoleSecretary:
		return secretaryCapabilities[c]
	default:
		return false
	}
}

// Landing is the screen the front end opens after login for this role.
func (r Role) Landing() string {
	if r == RoleAdmin {
		return "/dashboard"
	}
	return "/visitantes/novo"
}

// Capabilities lists the names of the capabilities granted to the role.
func (r Role) Capabilities() []string {
	var out []string
	for c := RegisterVisitors; c <= RunBackfill; c++ {
		if r.Can(c) {
			out = append(out, c.String())
		}
	}
	return out
}
