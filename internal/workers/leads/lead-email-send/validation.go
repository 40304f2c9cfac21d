package leademailsend

import "finportal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId"},
		Properties: map[string]validation.Property{
			"leadId": {
				Type:        "string",
				Description: "Id of the persisted lead",
				MinLength:   validation.Int(1),
			},
			"kind": {
				Type:        "string",
				Description: "Form the lead came from",
			},
		},
	}
}
