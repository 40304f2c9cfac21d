package leadsmssend

import "finportal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "kind", "mobile"},
		Properties: map[string]validation.Property{
			"leadId": {Type: "string", MinLength: validation.Int(1)},
			"kind":   {Type: "string", MinLength: validation.Int(1)},
			"name":   {Type: "string", MaxLength: validation.Int(200)},
			"mobile": {
				Type:        "string",
				Description: "Ten digit Indian mobile number",
				Pattern:     validation.Str(validation.MobilePattern),
			},
		},
	}
}
