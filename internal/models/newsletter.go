// internal/models/newsletter.go
package models

import (
	"strings"
	"time"

	"finportal/internal/common/validation"
)

type NewsletterItem struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Content     string    `json:"content" db:"content"`
	Image       string    `json:"image" db:"image"`
	Author      string    `json:"author" db:"author"`
	PublishDate string    `json:"publishDate" db:"publish_date"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (n *NewsletterItem) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(n.Title) == "" {
		errs["title"] = "title is required"
	}
	if n.Image != "" && !validation.ValidURL(n.Image) {
		errs["image"] = "image must be an http(s) URL or a site path"
	}
	if n.PublishDate != "" && !ValidDate(n.PublishDate) {
		errs["publishDate"] = "publishDate must be YYYY-MM-DD"
	}
	return errs
}
