package model

import "time"

// DailyRewardDefinition is one slot of the login reward cycle, 1-indexed.
type DailyRewardDefinition struct {
	Day                 int
	Points              int
	StreakFreezeGranted bool
}

// UserDailyRewardClaim rows are append-only and immutable once written.
type UserDailyRewardClaim struct {
	UserTelegramID int64
	Day            int
	TenantID       string
	ClaimedAt      time.Time
}

// DailyRewardStatus is one calendar slot plus its claimed flag for the
// reward calendar display.
type DailyRewardStatus struct {
	DailyRewardDefinition
	Claimed   bool
	ClaimedAt *time.Time
}
