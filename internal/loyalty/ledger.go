// Package loyalty holds the stamp-card arithmetic and the package credit
// consumption rule. Everything here is pure; persistence lives in services.
package loyalty

const (
	StampsPerHeart = 3
	HeartsPerMimo  = 1
	CardSize       = 12
)

// Summary is the derived loyalty state of one client.
type Summary struct {
	StampsEarned        int `json:"stamps_earned"`
	StampsOnCurrentCard int `json:"stamps_on_current_card"`
	CardSize            int `json:"card_size"`
	HeartsEarned        int `json:"hearts_earned"`
	MimosEarnedTotal    int `json:"mimos_earned_total"`
	MimosRedeemed       int `json:"mimos_redeemed"`
	MimosAvailable      int `json:"mimos_available"`
}

// StampsOnCurrentCard is the 1..CardSize position shown on the physical card.
// Stamp 12 fills a card and stamp 13 shows as 1 on a fresh one.
func StampsOnCurrentCard(stamps int) int {
	if stamps <= 0 {
		return 0
	}
	return ((stamps - 1) % CardSize) + 1
}

// HeartsEarned counts one heart per StampsPerHeart stamps.
func HeartsEarned(stamps int) int {
	if stamps <= 0 {
		return 0
	}
	return stamps / StampsPerHeart
}

// MimosEarnedTotal counts rewards unlocked since the card was last reset.
func MimosEarnedTotal(stamps int) int {
	return HeartsEarned(stamps) / HeartsPerMimo
}

// MimosAvailable is earned minus redeemed, floored at zero. A package
// reversal can leave the stored redeemed count above earned.
func MimosAvailable(stamps, redeemed int) int {
	if available := MimosEarnedTotal(stamps) - redeemed; available > 0 {
		return available
	}
	return 0
}

// Overdrawn reports whether more mimos were redeemed than are now earned.
func Overdrawn(stamps, redeemed int) bool {
	return redeemed > MimosEarnedTotal(stamps)
}

// CanRedeem reports whether one more mimo may be claimed.
func CanRedeem(stamps, redeemed int) bool {
	return MimosAvailable(stamps, redeemed) > 0
}

// CompletesCard reports whether reaching this stamp count fills a card.
func CompletesCard(stamps int) bool {
	return stamps > 0 && stamps%CardSize == 0
}

// RevertStamp removes one stamp, never going below zero.
func RevertStamp(stamps int) int {
	if stamps <= 0 {
		return 0
	}
	return stamps - 1
}

// Summarize derives the full loyalty state.
func Summarize(stamps, redeemed int) Summary {
	return Summary{
		StampsEarned:        stamps,
		StampsOnCurrentCard: StampsOnCurrentCard(stamps),
		CardSize:            CardSize,
		HeartsEarned:        HeartsEarned(stamps),
		MimosEarnedTotal:    MimosEarnedTotal(stamps),
		MimosRedeemed:       redeemed,
		MimosAvailable:      MimosAvailable(stamps, redeemed),
	}
}
