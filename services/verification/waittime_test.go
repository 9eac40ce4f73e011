package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWaitTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected string
	}{
		{"seconds bucket", 45, "45 ثانية"},
		{"zero seconds", 0, "0 ثانية"},
		{"last second value", 59, "59 ثانية"},
		{"minutes round up", 125, "3 دقيقة"},
		{"exact minute boundary", 60, "1 دقيقة"},
		{"last minute value", 3599, "60 دقيقة"},
		{"hours round up", 4000, "2 ساعة"},
		{"exact hour boundary", 3600, "1 ساعة"},
		{"days round up", 200000, "3 يوم"},
		{"exact day boundary", 86400, "1 يوم"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatWaitTime(tt.seconds))
		})
	}
}
