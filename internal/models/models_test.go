package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveUpside(t *testing.T) {
	tests := []struct {
		name    string
		target  float64
		current float64
		want    float64
	}{
		{"positive", 1200, 1000, 20},
		{"negative", 900, 1000, -10},
		{"rounded", 1234.5, 1111, 11.12},
		{"zero current", 100, 0, 0},
		{"negative current", 100, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DeriveUpside(tt.target, tt.current), 1e-9)
		})
	}
}

func TestResearchReport_Normalize(t *testing.T) {
	r := &ResearchReport{TargetPrice: 550, CurrentPrice: 500, Rating: "buy"}
	r.Normalize()

	if assert.NotNil(t, r.Upside) {
		assert.Equal(t, 10.0, *r.Upside)
	}
	assert.Equal(t, RatingBuy, r.Rating)
	assert.NotNil(t, r.Tags)

	explicit := 3.5
	r = &ResearchReport{TargetPrice: 550, CurrentPrice: 500, Upside: &explicit}
	r.Normalize()
	assert.Equal(t, 3.5, *r.Upside)
}

func TestResearchReport_Validate(t *testing.T) {
	r := &ResearchReport{Title: "HDFC Bank Q2", ReportType: ReportTypeEquityResearch, Rating: RatingHold}
	assert.Empty(t, r.Validate())

	r = &ResearchReport{ReportType: "DAILY", Rating: "STRONG BUY", Date: "12/01/2024"}
	errs := r.Validate()
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "reportType")
	assert.Contains(t, errs, "rating")
	assert.Contains(t, errs, "date")
}

func TestNewsItem_Validate(t *testing.T) {
	n := &NewsItem{Title: "Sensex closes higher", Link: "https://example.in/markets/1", PublishDate: "2024-03-01"}
	assert.Empty(t, n.Validate())

	n = &NewsItem{Title: " ", Link: "javascript:alert(1)"}
	errs := n.Validate()
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "link")
}

func TestMaterialItem_Validate(t *testing.T) {
	assert.Empty(t, (&MaterialItem{Title: "KYC form", Link: "/materials/kyc.pdf"}).Validate())
	assert.Contains(t, (&MaterialItem{Title: "KYC form"}).Validate(), "link")
}

func TestPartnerRequest_Validate(t *testing.T) {
	p := &PartnerRequest{Type: "B2B", Name: "Ravi", Mobile: "9876543210", Email: "ravi@example.in"}
	assert.Empty(t, p.Validate())

	p.Mobile = "12345"
	p.Status = "Done"
	errs := p.Validate()
	assert.Contains(t, errs, "mobile")
	assert.Contains(t, errs, "status")
}

func TestPartnerStatus_Valid(t *testing.T) {
	assert.True(t, PartnerStatusApproved.Valid())
	assert.False(t, PartnerStatus("approved").Valid())
}

func TestFilterCacheVariant(t *testing.T) {
	yes := true
	assert.Equal(t, "category=IPO;featured=true", NewsFilter{Category: "IPO", Featured: &yes}.CacheVariant())
	assert.Equal(t, "category=;featured=any", NewsFilter{}.CacheVariant())
	assert.NotEqual(t,
		ReportFilter{Published: &yes}.CacheVariant(),
		ReportFilter{}.CacheVariant())
}
