package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"name":   {Type: "string", MinLength: Int(1)},
			"pan":    {Type: "string", Pattern: Str(PANPattern)},
			"mobile": {Type: "string", Pattern: Str(MobilePattern)},
			"amount": {Type: "number", Minimum: Float(0)},
		},
		Required: []string{"name", "pan"},
	}
}

func TestValidateInput_Valid(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"name":   "Asha",
		"pan":    "ABCDE1234F",
		"mobile": "9876543210",
		"amount": 150000.0,
		"extra":  "allowed",
	}, leadSchema())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateInput_MissingRequired(t *testing.T) {
	result := ValidateInput(map[string]interface{}{"pan": "ABCDE1234F"}, leadSchema())

	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("name"))
	assert.Equal(t, "REQUIRED_FIELD_MISSING", result.Errors[0].Code)
}

func TestValidateInput_PatternMismatch(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"name": "Asha",
		"pan":  "abcde1234f",
	}, leadSchema())

	require.False(t, result.Valid)
	fieldErrors := result.FieldErrors()
	assert.Contains(t, fieldErrors, "pan")
	assert.NotContains(t, fieldErrors, "name")
}

func TestValidateInput_AdditionalPropertiesDenied(t *testing.T) {
	schema := leadSchema()
	schema.AdditionalProperties = Bool(false)

	result := ValidateInput(map[string]interface{}{
		"name":  "Asha",
		"pan":   "ABCDE1234F",
		"extra": true,
	}, schema)

	assert.False(t, result.Valid)
	assert.Len(t, result.GetErrorMessages(), 1)
}

func TestFormatHelpers(t *testing.T) {
	assert.True(t, ValidMobile("9123456789"))
	assert.False(t, ValidMobile("5123456789"))
	assert.False(t, ValidMobile("912345678"))

	assert.True(t, ValidEmail("ops@example.in"))
	assert.False(t, ValidEmail("ops@example"))

	assert.True(t, ValidURL("https://example.com/news/1"))
	assert.True(t, ValidURL("/materials/brochure.pdf"))
	assert.False(t, ValidURL("//evil.example"))
	assert.False(t, ValidURL("not a url"))
}

func TestFormatPatterns(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"pan":     {Type: "string", Pattern: Str(PANPattern)},
			"ifsc":    {Type: "string", Pattern: Str(IFSCPattern)},
			"pincode": {Type: "string", Pattern: Str(PincodePattern)},
		},
	}

	tests := []struct {
		field, value string
		valid        bool
	}{
		{"pan", "ABCDE1234F", true},
		{"pan", "ABCD1234F", false},
		{"pan", "abcde1234f", false},
		{"ifsc", "HDFC0001234", true},
		{"ifsc", "HDFC1001234", false},
		{"pincode", "560001", true},
		{"pincode", "060001", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.value, func(t *testing.T) {
			result := ValidateInput(map[string]interface{}{tt.field: tt.value}, schema)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}
