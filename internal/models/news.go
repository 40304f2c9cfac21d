// internal/models/news.go
package models

import (
	"strings"
	"time"

	"finportal/internal/common/validation"
)

// NewsItem is a market news entry shown on the home page and news list.
type NewsItem struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Category    string    `json:"category" db:"category"`
	Author      string    `json:"author" db:"author"`
	PublishDate string    `json:"publishDate" db:"publish_date"`
	Views       int       `json:"views" db:"views"`
	Featured    bool      `json:"featured" db:"featured"`
	Link        string    `json:"link" db:"link"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate returns one message per offending field.
func (n *NewsItem) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(n.Title) == "" {
		errs["title"] = "title is required"
	}
	if n.Link != "" && !validation.ValidURL(n.Link) {
		errs["link"] = "link must be an http(s) URL or a site path"
	}
	if n.PublishDate != "" && !ValidDate(n.PublishDate) {
		errs["publishDate"] = "publishDate must be YYYY-MM-DD"
	}
	return errs
}

// NewsFilter narrows the news list.
type NewsFilter struct {
	Category string
	Featured *bool
}

// CacheVariant is the list-cache key suffix for this filter.
func (f NewsFilter) CacheVariant() string {
	featured := "any"
	if f.Featured != nil {
		if *f.Featured {
			featured = "true"
		} else {
			featured = "false"
		}
	}
	return "category=" + f.Category + ";featured=" + featured
}

// DateLayout is how publish and report dates travel and are stored.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
