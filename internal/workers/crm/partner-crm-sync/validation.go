package partnercrmsync

import "finportal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "kind"},
		Properties: map[string]validation.Property{
			"leadId": {Type: "string", MinLength: validation.Int(1)},
			"kind":   {Type: "string", MinLength: validation.Int(1)},
		},
	}
}
