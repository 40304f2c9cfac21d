// Package gate classifies requests as public or admin-only and enforces the
// admin role on the protected ones.
package gate

import "strings"

// Access is what a route requires of the caller.
type Access int

const (
	Public Access = iota
	AdminOnly
)

// Rule matches a method and a path pattern. An empty Method matches any
// method. In Pattern, "*" matches one path segment and a trailing "**"
// matches the rest of the path, including nothing.
type Rule struct {
	Methods []string
	Pattern string
	Access  Access
}

// Route is the classification of one request.
type Route struct {
	Access Access
	Page   bool
}

var mutating = []string{"POST", "PUT", "PATCH", "DELETE"}

// DefaultRules protects the admin pages, every content mutation and all
// partner request reads. Everything else is public.
func DefaultRules() []Rule {
	rules := []Rule{
		{Pattern: "/admin/**", Access: AdminOnly},
		{Pattern: "/api/partner-requests/**", Access: AdminOnly},
	}
	for _, res := range []string{"news", "newsletter", "materials", "reports"} {
		rules = append(rules, Rule{Methods: mutating, Pattern: "/api/" + res + "/**", Access: AdminOnly})
	}
	return rules
}

// Matcher is a static, first-match route table.
type Matcher struct {
	rules []Rule
}

func NewMatcher(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Classify returns the access required for method and path. Paths under
// /api/ are API routes, everything else is a page.
func (m *Matcher) Classify(method, path string) Route {
	route := Route{Access: Public, Page: !isAPI(path)}
	for _, rule := range m.rules {
		if rule.matches(method, path) {
			route.Access = rule.Access
			return route
		}
	}
	return route
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func (r Rule) matches(method, path string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if strings.EqualFold(m, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchPattern(r.Pattern, path)
}

func matchPattern(pattern, path string) bool {
	pat := splitPath(pattern)
	segs := splitPath(path)

	for i, p := range pat {
		if p == "**" {
			return true
		}
		if i >= len(segs) {
			return false
		}
		if p != "*" && p != segs[i] {
			return false
		}
	}
	return len(segs) == len(pat)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
