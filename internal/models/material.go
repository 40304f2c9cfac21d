// internal/models/material.go
package models

import (
	"strings"
	"time"

	"finportal/internal/common/validation"
)

// MaterialItem is a downloadable brochure or form.
type MaterialItem struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Link      string    `json:"link" db:"link"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (m *MaterialItem) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(m.Title) == "" {
		errs["title"] = "title is required"
	}
	switch {
	case strings.TrimSpace(m.Link) == "":
		errs["link"] = "link is required"
	case !validation.ValidURL(m.Link):
		errs["link"] = "link must be an http(s) URL or a site path"
	}
	return errs
}
