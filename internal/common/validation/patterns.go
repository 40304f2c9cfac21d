package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// Format patterns shared by lead forms and admin content.
const (
	PANPattern     = `^[A-Z]{5}[0-9]{4}[A-Z]{1}$`
	IFSCPattern    = `^[A-Z]{4}0[A-Z0-9]{6}$`
	EmailPattern   = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	MobilePattern  = `^[6-9][0-9]{9}$`
	PincodePattern = `^[1-9][0-9]{5}$`
	AmountPattern  = `^[0-9]+(\.[0-9]+)?$`
)

var (
	emailRegex  = regexp.MustCompile(EmailPattern)
	mobileRegex = regexp.MustCompile(MobilePattern)
)

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidMobile checks a ten digit Indian mobile number without country code.
func ValidMobile(mobile string) bool {
	return mobileRegex.MatchString(mobile)
}

// ValidURL accepts absolute http(s) URLs and site-relative paths.
func ValidURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
