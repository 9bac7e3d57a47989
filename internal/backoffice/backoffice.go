// Package backoffice holds the resource layer behind the admin and
// superadmin APIs. Each resource answers three questions: is this input
// valid (Validate), what rows match these filters (List), and may this
// actor perform this action (Authorize). HTTP handlers dispatch through
// these and stay thin.
package backoffice

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/brosora6/sora-sub000/internal/auth"
)

type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated back-office identity, capabilities resolved
// at authentication time.
type Actor struct {
	ID           int64
	Role         auth.Role
	Capabilities []auth.Capability
}

// Fields collects per-field validation messages. Empty means valid.
type Fields map[string]string

func (f Fields) Add(name, message string) {
	if _, exists := f[name]; !exists {
		f[name] = message
	}
}

func (f Fields) Empty() bool { return len(f) == 0 }

// ListParams are the common list filters shared by every resource.
type ListParams struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

func (p ListParams) Offset() int { return (p.Page - 1) * p.PerPage }

// Page is the paginated list envelope.
type Page struct {
	Items   any   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ParseListParams reads search/status/page/perPage from a query string and
// clamps paging to sane bounds.
func ParseListParams(values url.Values) ListParams {
	params := ListParams{
		Search:  strings.TrimSpace(values.Get("search")),
		Status:  strings.TrimSpace(values.Get("status")),
		Page:    1,
		PerPage: defaultPerPage,
	}
	if v, err := strconv.Atoi(values.Get("page")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(values.Get("perPage")); err == nil && v > 0 {
		params.PerPage = v
		if params.PerPage > maxPerPage {
			params.PerPage = maxPerPage
		}
	}
	return params
}

// authorize is the shared capability gate: every action on a resource maps
// to one capability, except where a resource overrides a specific action.
func authorize(actor Actor, capability auth.Capability) bool {
	return auth.HasCapability(actor.Capabilities, capability)
}

func itoa(v int) string { return strconv.Itoa(v) }
