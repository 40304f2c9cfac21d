// internal/models/report.go
package models

import (
	"math"
	"strings"
	"time"

	"finportal/internal/common/validation"
)

type ReportType string

const (
	ReportTypeEquityResearch   ReportType = "EQUITY_RESEARCH"
	ReportTypeSectorReport     ReportType = "SECTOR_REPORT"
	ReportTypeIPONote          ReportType = "IPO_NOTE"
	ReportTypeMarketOutlook    ReportType = "MARKET_OUTLOOK"
	ReportTypeMutualFundReview ReportType = "MUTUAL_FUND_REVIEW"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeEquityResearch, ReportTypeSectorReport, ReportTypeIPONote,
		ReportTypeMarketOutlook, ReportTypeMutualFundReview:
		return true
	}
	return false
}

type Rating string

const (
	RatingBuy  Rating = "BUY"
	RatingHold Rating = "HOLD"
	RatingSell Rating = "SELL"
)

func (r Rating) Valid() bool {
	return r == RatingBuy || r == RatingHold || r == RatingSell
}

// ResearchReport is a broker research listing. Upside is derived from the
// two prices when the caller leaves it out.
type ResearchReport struct {
	ID             int        `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Stock          string     `json:"stock" db:"stock"`
	Company        string     `json:"company" db:"company"`
	Author         string     `json:"author" db:"author"`
	AuthorFirm     string     `json:"authorFirm" db:"author_firm"`
	Date           string     `json:"date" db:"report_date"`
	Sector         string     `json:"sector" db:"sector"`
	ReportType     ReportType `json:"reportType" db:"report_type"`
	Rating         Rating     `json:"rating" db:"rating"`
	TargetPrice    float64    `json:"targetPrice" db:"target_price"`
	CurrentPrice   float64    `json:"currentPrice" db:"current_price"`
	Upside         *float64   `json:"upside" db:"upside"`
	Pages          int        `json:"pages" db:"pages"`
	Views          int        `json:"views" db:"views"`
	Recommendation string     `json:"recommendation" db:"recommendation"`
	Tags           []string   `json:"tags" db:"tags"`
	Summary        string     `json:"summary" db:"summary"`
	PDFURL         string     `json:"pdfUrl" db:"pdf_url"`
	Published      bool       `json:"published" db:"published"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// DeriveUpside is the percentage move from current to target price, rounded
// to two places. A non-positive current price yields 0.
func DeriveUpside(target, current float64) float64 {
	if current <= 0 {
		return 0
	}
	return math.Round((target-current)/current*100*100) / 100
}

// Normalize fills derived fields before the report is written.
func (r *ResearchReport) Normalize() {
	if r.Upside == nil {
		upside := DeriveUpside(r.TargetPrice, r.CurrentPrice)
		r.Upside = &upside
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	r.Rating = Rating(strings.ToUpper(string(r.Rating)))
}

func (r *ResearchReport) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = "title is required"
	}
	if !r.ReportType.Valid() {
		errs["reportType"] = "reportType must be one of EQUITY_RESEARCH, SECTOR_REPORT, IPO_NOTE, MARKET_OUTLOOK, MUTUAL_FUND_REVIEW"
	}
	if !r.Rating.Valid() {
		errs["rating"] = "rating must be BUY, HOLD or SELL"
	}
	if r.TargetPrice < 0 {
		errs["targetPrice"] = "targetPrice cannot be negative"
	}
	if r.CurrentPrice < 0 {
		errs["currentPrice"] = "currentPrice cannot be negative"
	}
	if r.Pages < 0 {
		errs["pages"] = "pages cannot be negative"
	}
	if r.Date != "" && !ValidDate(r.Date) {
		errs["date"] = "date must be YYYY-MM-DD"
	}
	if r.PDFURL != "" && !validation.ValidURL(r.PDFURL) {
		errs["pdfUrl"] = "pdfUrl must be an http(s) URL or a site path"
	}
	return errs
}

// ReportFilter narrows the report list. Published is nil for admin listings
// that include drafts.
type ReportFilter struct {
	Sector     string
	Rating     Rating
	ReportType ReportType
	Published  *bool
}

func (f ReportFilter) CacheVariant() string {
	published := "all"
	if f.Published != nil && *f.Published {
		published = "published"
	}
	return "sector=" + f.Sector + ";rating=" + string(f.Rating) +
		";type=" + string(f.ReportType) + ";" + published
}
