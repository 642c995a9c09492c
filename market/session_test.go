package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySession(t *testing.T) {
	t.Parallel()

	at := func(hour int) time.Time {
		return time.Date(2026, 10, 14, hour, 30, 0, 0, JST)
	}

	tests := []struct {
		name string
		when time.Time
		want SessionName
		mult float64
	}{
		{"tokyo open", at(9), SessionTokyo, 1.5},
		{"tokyo late", at(14), SessionTokyo, 1.5},
		{"gap before london", at(15), SessionOff, 1.5},
		{"london", at(16), SessionLondon, 2.5},
		{"overlap goes to london", at(22), SessionLondon, 2.5},
		{"ny early after midnight", at(1), SessionNYEarly, 2.0},
		{"off", at(5), SessionOff, 1.5},
		{"utc input converted", time.Date(2026, 10, 14, 0, 30, 0, 0, time.UTC), SessionTokyo, 1.5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ClassifySession(tt.when)
			assert.Equal(t, tt.want, s.Name)
			assert.Equal(t, tt.mult, s.TPMultiplier)
		})
	}
}
