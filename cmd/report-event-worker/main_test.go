package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIDFromObjectName(t *testing.T) {
	tests := []struct {
		name       string
		objectName string
		want       string
	}{
		{name: "id with timestamp", objectName: "cse_reports/670_20240630.pdf", want: "670"},
		{name: "bare id", objectName: "cse_reports/670.pdf", want: "670"},
		{name: "nested path", objectName: "cse_reports/2024/670_q2.pdf", want: "670"},
		{name: "prefix placeholder", objectName: "cse_reports/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordIDFromObjectName(tt.objectName))
		})
	}
}
