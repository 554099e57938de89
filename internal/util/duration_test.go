package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds collapse", 30 * time.Second, "less than a minute"},
		{"minutes", 45 * time.Minute, "45 minutes"},
		{"single minute", time.Minute, "1 minute"},
		{"hours", 2 * time.Hour, "2 hours"},
		{"hour and minutes", 90 * time.Minute, "1 hour 30 minutes"},
		{"exact day", 24 * time.Hour, "1 day"},
		{"day and hours", 26 * time.Hour, "1 day 2 hours"},
		{"multiple days drop minutes", 49*time.Hour + 10*time.Minute, "2 days 1 hour"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HumanizeDuration(tc.d))
		})
	}
}
