package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReprintID(t *testing.T) {
	tests := []struct {
		id       string
		wantBase string
		wantKey  string
		wantOK   bool
	}{
		{"#1234_RP1", "#1234", "RP1", true},
		{"1234_RP12", "1234", "RP12", true},
		{"#1234", "#1234", "", false},
		{"#1234_RP", "#1234_RP", "", false},
		{"#1234_RP1x", "#1234_RP1x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			base, key, ok := SplitReprintID(tt.id)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNextReprint(t *testing.T) {
	t.Run("first reprint", func(t *testing.T) {
		id, key := NextReprint("#1234", "", nil)
		assert.Equal(t, "#1234_RP1", id)
		assert.Equal(t, "RP1", key)
	})

	t.Run("follows highest existing key", func(t *testing.T) {
		meta := map[string]ReprintMeta{"RP1": {}, "RP3": {}, "notes": {}}
		id, key := NextReprint("#1234", "#1234_RP2", meta)
		assert.Equal(t, "#1234_RP4", id)
		assert.Equal(t, "RP4", key)
	})

	t.Run("follows current id when meta is empty", func(t *testing.T) {
		id, key := NextReprint("#1234", "#1234_RP2", map[string]ReprintMeta{})
		assert.Equal(t, "#1234_RP3", id)
		assert.Equal(t, "RP3", key)
	})
}
