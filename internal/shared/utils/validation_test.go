package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		required bool
		wantErr  bool
	}{
		{name: "command name", id: "save_file", required: true},
		{name: "hyphenated", id: "get-file-path", required: true},
		{name: "empty optional", id: "", required: false},
		{name: "empty required", id: "", required: true, wantErr: true},
		{name: "dot", id: "documents.save_file", required: true, wantErr: true},
		{name: "slash", id: "../save", required: true, wantErr: true},
		{name: "too long", id: strings.Repeat("a", MaxIDLength+1), required: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "command", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateToolID(t *testing.T) {
	assert.NoError(t, ValidateToolID("documents.save_file", "tool_id", true))
	assert.Error(t, ValidateToolID("", "tool_id", true))
	assert.Error(t, ValidateToolID("documents/save_file", "tool_id", true))
	assert.Error(t, ValidateToolID(".save_file", "tool_id", true))
	assert.Error(t, ValidateToolID("documents.", "tool_id", true))
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory("", false))
	assert.NoError(t, ValidateCategory("storage", true))
	assert.Error(t, ValidateCategory("Storage", true))
	assert.Error(t, ValidateCategory("", true))
}

func TestValidateStringUTF8(t *testing.T) {
	assert.Error(t, ValidateString("\xff\xfe", "field", 0, 10, true))
	assert.Error(t, ValidateString("ab", "field", 3, 10, true))
}
