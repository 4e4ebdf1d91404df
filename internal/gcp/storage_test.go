package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicObjectURL(t *testing.T) {
	url := PublicObjectURL("my-reports", "pl_reports/4f2c1d9a.pdf")
	assert.Equal(t, "https://storage.googleapis.com/my-reports/pl_reports/4f2c1d9a.pdf", url)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FINANCIALREPORTFLOW_TEST_KEY", "configured")
	assert.Equal(t, "configured", GetEnv("FINANCIALREPORTFLOW_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FINANCIALREPORTFLOW_TEST_KEY_MISSING", "fallback"))
}
