package leadstatusupdate

import (
	"finportal/internal/common/validation"
	"finportal/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "status"},
		Properties: map[string]validation.Property{
			"leadId": {Type: "string", MinLength: validation.Int(1)},
			"status": {
				Type: "string",
				Enum: []string{string(models.LeadStatusNotified), string(models.LeadStatusFailed)},
			},
			"reason": {Type: "string", MaxLength: validation.Int(500)},
		},
	}
}
