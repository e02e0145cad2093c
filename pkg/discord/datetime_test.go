package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
		{"2H", 2 * time.Hour},
		{" 45m ", 45 * time.Minute},
		{"1h30m", 90 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDuration(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "12", "h", "1w", "-5m", "1h 30m"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			assert.Error(t, err)
		})
	}
}

func TestFormatDeadline(t *testing.T) {
	at := time.Unix(1750000000, 0)
	assert.Equal(t, "<t:1750000000:R>", FormatDeadline(at))
	assert.Equal(t, "<t:1750000000:f>", FormatAbsolute(at))
	assert.Equal(t, "jamais", FormatDeadline(time.Time{}))
	assert.Equal(t, "", FormatAbsolute(time.Time{}))
}
