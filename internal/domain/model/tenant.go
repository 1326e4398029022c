package model

import "strings"

// Tenant is a restaurant or business unit that scopes data visibility.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// TenantsByName orders tenants for display, case-insensitively.
func TenantsByName(a, b Tenant) int {
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}
