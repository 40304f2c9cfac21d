package leads

import (
	"finportal/internal/common/validation"
	"finportal/internal/models"
)

// Payloads are normalized to strings before validation, so every property
// is a string and numbers are checked by pattern.
const (
	datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	timePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

func text() validation.Property {
	return validation.Property{Type: "string", MaxLength: validation.Int(500)}
}

func required() validation.Property {
	return validation.Property{Type: "string", MinLength: validation.Int(1), MaxLength: validation.Int(200)}
}

func pattern(p string) validation.Property {
	return validation.Property{Type: "string", Pattern: validation.Str(p)}
}

func contactProperties() map[string]validation.Property {
	return map[string]validation.Property{
		"name":    required(),
		"mobile":  pattern(validation.MobilePattern),
		"email":   pattern(validation.EmailPattern),
		"city":    text(),
		"message": text(),
	}
}

func withProps(base map[string]validation.Property, extra map[string]validation.Property) map[string]validation.Property {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// schemas holds the accepted shape of each lead form.
var schemas = map[models.LeadKind]validation.JSONSchema{
	models.LeadKindQuote: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"product":      required(),
			"amount":       pattern(validation.AmountPattern),
			"tenure":       pattern(validation.AmountPattern),
			"interestRate": pattern(validation.AmountPattern),
			"pincode":      pattern(validation.PincodePattern),
		}),
		Required: []string{"name", "mobile", "product"},
	},
	models.LeadKindScheduleCall: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"date":  pattern(datePattern),
			"time":  pattern(timePattern),
			"topic": text(),
		}),
		Required: []string{"name", "mobile", "date", "time"},
	},
	models.LeadKindSubscribe: {
		Type: "object",
		Properties: map[string]validation.Property{
			"email": pattern(validation.EmailPattern),
		},
		Required: []string{"email"},
	},
	models.LeadKindPartner: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"type":    required(),
			"subType": text(),
		}),
		Required: []string{"type", "name", "mobile", "email"},
	},
	models.LeadKindDemat: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"pan":         pattern(validation.PANPattern),
			"dob":         pattern(datePattern),
			"address":     text(),
			"pincode":     pattern(validation.PincodePattern),
			"bankAccount": pattern(`^[0-9]{9,18}$`),
			"ifsc":        pattern(validation.IFSCPattern),
		}),
		Required: []string{"name", "mobile", "email", "pan"},
	},
	models.LeadKindInvestment: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"pan":            pattern(validation.PANPattern),
			"investmentType": required(),
			"amount":         pattern(validation.AmountPattern),
			"tenure":         pattern(validation.AmountPattern),
		}),
		Required: []string{"name", "mobile", "email", "investmentType", "amount"},
	},
	models.LeadKindCreditCard: {
		Type: "object",
		Properties: withProps(contactProperties(), map[string]validation.Property{
			"pan":            pattern(validation.PANPattern),
			"dob":            pattern(datePattern),
			"income":         pattern(validation.AmountPattern),
			"employmentType": text(),
			"company":        text(),
			"pincode":        pattern(validation.PincodePattern),
			"cardType":       text(),
		}),
		Required: []string{"name", "mobile", "email", "pan", "income", "pincode"},
	},
}

// fieldMessages replaces gojsonschema's generic pattern messages with
// something a form can show next to the field.
var fieldMessages = map[string]string{
	"pan":          "PAN must look like ABCDE1234F",
	"ifsc":         "IFSC must look like HDFC0001234",
	"mobile":       "mobile must be a 10 digit Indian mobile number",
	"email":        "email is invalid",
	"pincode":      "pincode must be 6 digits",
	"amount":       "amount must be a number",
	"tenure":       "tenure must be a number",
	"interestRate": "interestRate must be a number",
	"income":       "income must be a number",
	"date":         "date must be YYYY-MM-DD",
	"dob":          "dob must be YYYY-MM-DD",
	"time":         "time must be HH:MM",
	"bankAccount":  "bankAccount must be 9 to 18 digits",
}

// Validate checks payload against the schema for kind and returns one
// message per offending field.
func Validate(kind models.LeadKind, payload map[string]interface{}) map[string]string {
	schema, ok := schemas[kind]
	if !ok {
		return map[string]string{"kind": "unknown form"}
	}
	result := validation.ValidateInput(payload, schema)
	if result.Valid {
		return nil
	}

	out := make(map[string]string, len(result.Errors))
	for _, e := range result.Errors {
		if _, seen := out[e.Field]; seen {
			continue
		}
		msg := e.Message
		if e.Code == "PATTERN_MISMATCH" {
			if friendly, ok := fieldMessages[e.Field]; ok {
				msg = friendly
			}
		}
		if e.Code == "REQUIRED_FIELD_MISSING" || (e.Code == "MIN_LENGTH_VIOLATION" && payload[e.Field] == "") {
			msg = e.Field + " is required"
		}
		out[e.Field] = msg
	}
	return out
}
