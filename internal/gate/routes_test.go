package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Classify(t *testing.T) {
	m := NewMatcher(DefaultRules())

	tests := []struct {
		method string
		path   string
		access Access
		page   bool
	}{
		{"GET", "/", Public, true},
		{"GET", "/insurance/health", Public, true},
		{"GET", "/admin", AdminOnly, true},
		{"GET", "/admin/news/edit/4", AdminOnly, true},
		{"GET", "/administrator", Public, true},
		{"GET", "/api/news", Public, false},
		{"GET", "/api/news/3", Public, false},
		{"POST", "/api/news", AdminOnly, false},
		{"PUT", "/api/newsletter/abc", AdminOnly, false},
		{"DELETE", "/api/materials/2", AdminOnly, false},
		{"GET", "/api/reports/search", Public, false},
		{"POST", "/api/reports", AdminOnly, false},
		{"GET", "/api/partner-requests", AdminOnly, false},
		{"PATCH", "/api/partner-requests/9", AdminOnly, false},
		{"POST", "/api/send-quote", Public, false},
		{"POST", "/api/b2b-partner", Public, false},
		{"GET", "/api/emi", Public, false},
		{"GET", "/health", Public, true},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			route := m.Classify(tt.method, tt.path)
			assert.Equal(t, tt.access, route.Access)
			assert.Equal(t, tt.page, route.Page)
		})
	}
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, matchPattern("/api/news/*", "/api/news/7"))
	assert.False(t, matchPattern("/api/news/*", "/api/news"))
	assert.False(t, matchPattern("/api/news/*", "/api/news/7/views"))
	assert.True(t, matchPattern("/api/**", "/api"))
	assert.True(t, matchPattern("/", "/"))
	assert.False(t, matchPattern("/", "/x"))
}
