package auth

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func initDataWith(user string, authDate string) string {
	values := url.Values{}
	values.Set("user", user)
	values.Set("auth_date", authDate)
	return values.Encode()
}

func TestExtractTelegramData(t *testing.T) {
	tests := []struct {
		name     string
		initData string
		expected *TelegramUserData
		wantErr  bool
	}{
		{
			name:     "Full name builds the handle",
			initData: initDataWith(`{"id":42,"username":"studybuddy","first_name":"Ada","last_name":"Lovelace"}`, "1756100000"),
			expected: &TelegramUserData{
				ID:       42,
				Username: "studybuddy",
				Handle:   "Ada Lovelace",
				AuthDate: time.Unix(1756100000, 0),
			},
		},
		{
			name:     "First name only trims the handle",
			initData: initDataWith(`{"id":7,"username":"solo","first_name":"Ada"}`, "1756100000"),
			expected: &TelegramUserData{
				ID:       7,
				Username: "solo",
				Handle:   "Ada",
				AuthDate: time.Unix(1756100000, 0),
			},
		},
		{
			name:     "Missing auth_date fails",
			initData: initDataWith(`{"id":42}`, ""),
			wantErr:  true,
		},
		{
			name:     "Malformed user blob fails",
			initData: initDataWith(`not-json`, "1756100000"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExtractTelegramData(tt.initData)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}
