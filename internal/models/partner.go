// internal/models/partner.go
package models

import (
	"strings"
	"time"

	"finportal/internal/common/validation"
)

type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "Pending"
	PartnerStatusApproved PartnerStatus = "Approved"
	PartnerStatusRejected PartnerStatus = "Rejected"
)

func (s PartnerStatus) Valid() bool {
	return s == PartnerStatusPending || s == PartnerStatusApproved || s == PartnerStatusRejected
}

// PartnerRequest is a B2B or referral partner registration awaiting review.
type PartnerRequest struct {
	ID        string        `json:"id" db:"id"`
	Type      string        `json:"type" db:"type"`
	SubType   string        `json:"subType" db:"sub_type"`
	Name      string        `json:"name" db:"name"`
	Mobile    string        `json:"mobile" db:"mobile"`
	Email     string        `json:"email" db:"email"`
	Status    PartnerStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

func (p *PartnerRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Type) == "" {
		errs["type"] = "type is required"
	}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	if !validation.ValidMobile(p.Mobile) {
		errs["mobile"] = "mobile must be a 10 digit Indian mobile number"
	}
	if !validation.ValidEmail(p.Email) {
		errs["email"] = "email is invalid"
	}
	if p.Status != "" && !p.Status.Valid() {
		errs["status"] = "status must be Pending, Approved or Rejected"
	}
	return errs
}

// StatusUpdate is the PATCH body for a partner request.
type StatusUpdate struct {
	Status PartnerStatus `json:"status"`
}
