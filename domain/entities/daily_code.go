package entities

import "time"

// DailyCode is a shared promo code redeemable for free tickets by a
// capped number of distinct players.
type DailyCode struct {
	Code           string    `db:"code"`
	IsActive       bool      `db:"is_active"`
	MaxRedemptions int       `db:"max_redemptions"` // Distinct players allowed
	CreatedAt      time.Time `db:"created_at"`
}

// CodeUsage records one player's redemption of one code.
// (player_fid, code) is unique; a player redeems at most one code per
// calendar day across all codes.
type CodeUsage struct {
	PlayerFid int64     `db:"player_fid"`
	Code      string    `db:"code"`
	UsedAt    time.Time `db:"used_at"`
}

// NotificationToken is a stored push-notification subscription. Its
// presence for a fid is the anti-abuse gate for code redemptions.
type NotificationToken struct {
	PlayerFid int64     `db:"player_fid"`
	Token     string    `db:"token"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}
