package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullInfo() ClientInfo {
	return ClientInfo{
		IP:         "203.0.113.9",
		Country:    "مصر",
		City:       "القاهرة",
		Browser:    "Chrome",
		OS:         "Windows",
		DeviceType: "desktop",
	}
}

func TestScore_UserRealm(t *testing.T) {
	weights := UserWeights()

	t.Run("fully attributed login is high", func(t *testing.T) {
		// 5 known attributes against a base of 0.
		assert.Equal(t, LevelHigh, Score(fullInfo(), weights, false))
	})

	t.Run("partially attributed login is medium", func(t *testing.T) {
		info := ClientInfo{
			IP:      "203.0.113.9",
			Country: "مصر",
			City:    "غير معروف",
			Browser: "Chrome",
			OS:      "غير معروف",
		}
		// country + browser = 2.
		assert.Equal(t, LevelMedium, Score(info, weights, false))
	})

	t.Run("anonymous login is low", func(t *testing.T) {
		info := ClientInfo{
			IP:      "203.0.113.9",
			Country: "غير معروف",
			City:    "غير معروف",
			Browser: "غير معروف",
			OS:      "غير معروف",
		}
		assert.Equal(t, LevelLow, Score(info, weights, false))
	})

	t.Run("bot penalty drags a full profile down", func(t *testing.T) {
		info := fullInfo()
		info.Bot = true
		// Bot disqualifies the browser point and costs the penalty:
		// 4 - 2 = 2 → medium.
		assert.Equal(t, LevelMedium, Score(info, weights, false))
	})

	t.Run("private IP penalty", func(t *testing.T) {
		info := fullInfo()
		info.IP = "192.168.1.5"
		// 5 - 1 = 4 → still high for a user.
		assert.Equal(t, LevelHigh, Score(info, weights, false))
	})
}

func TestScore_AdminRealm(t *testing.T) {
	weights := AdminWeights()

	t.Run("fully attributed admin login is high", func(t *testing.T) {
		// base 2 + 5 attributes = 7 ≥ 6.
		assert.Equal(t, LevelHigh, Score(fullInfo(), weights, false))
	})

	t.Run("super admin bonus lifts a partial profile", func(t *testing.T) {
		info := ClientInfo{
			IP:      "203.0.113.9",
			Country: "مصر",
			City:    "غير معروف",
			Browser: "Chrome",
			OS:      "غير معروف",
		}
		// base 2 + 2 attributes = 4 → medium without the bonus.
		assert.Equal(t, LevelMedium, Score(info, weights, false))
		// +2 super admin = 6 → high.
		assert.Equal(t, LevelHigh, Score(info, weights, true))
	})

	t.Run("anonymous bot from private network is low", func(t *testing.T) {
		info := ClientInfo{
			IP:      "127.0.0.1",
			Country: "غير معروف",
			City:    "غير معروف",
			Browser: "غير معروف",
			OS:      "غير معروف",
			Bot:     true,
		}
		// base 2 - 3 bot - 2 private = -3.
		assert.Equal(t, LevelLow, Score(info, weights, false))
	})
}
