package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStampsOnCurrentCard(t *testing.T) {
	cases := []struct {
		stamps int
		want   int
	}{
		{0, 0},
		{1, 1},
		{11, 11},
		{12, 12},
		{13, 1},
		{24, 12},
		{25, 1},
		{35, 11},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StampsOnCurrentCard(tc.stamps), "stamps=%d", tc.stamps)
	}
}

func TestStampsOnCurrentCardRange(t *testing.T) {
	for stamps := 0; stamps <= 500; stamps++ {
		got := StampsOnCurrentCard(stamps)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, CardSize)
		isFullCard := stamps > 0 && stamps%CardSize == 0
		assert.Equal(t, isFullCard, got == CardSize, "stamps=%d", stamps)
	}
}

func TestMimosAvailableFormula(t *testing.T) {
	for stamps := 0; stamps <= 100; stamps++ {
		for redeemed := 0; redeemed <= 40; redeemed++ {
			want := (stamps/3)/1 - redeemed
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, MimosAvailable(stamps, redeemed))
			assert.Equal(t, want > 0, CanRedeem(stamps, redeemed))
			assert.Equal(t, (stamps/3) < redeemed, Overdrawn(stamps, redeemed))
		}
	}
}

func TestSummarizeWorkedExample(t *testing.T) {
	s := Summarize(35, 9)

	assert.Equal(t, 11, s.StampsOnCurrentCard)
	assert.Equal(t, 11, s.HeartsEarned)
	assert.Equal(t, 11, s.MimosEarnedTotal)
	assert.Equal(t, 2, s.MimosAvailable)
	assert.Equal(t, CardSize, s.CardSize)
}

func TestCompletesCard(t *testing.T) {
	assert.False(t, CompletesCard(0))
	assert.False(t, CompletesCard(11))
	assert.True(t, CompletesCard(12))
	assert.False(t, CompletesCard(13))
	assert.True(t, CompletesCard(36))
}

func TestRevertStampFloorsAtZero(t *testing.T) {
	assert.Equal(t, 0, RevertStamp(0))
	assert.Equal(t, 0, RevertStamp(1))
	assert.Equal(t, 6, RevertStamp(7))
	assert.Equal(t, 0, RevertStamp(-3))
}

func TestNegativeStampsDeriveNothing(t *testing.T) {
	assert.Equal(t, 0, StampsOnCurrentCard(-1))
	assert.Equal(t, 0, HeartsEarned(-4))
	assert.Equal(t, 0, MimosEarnedTotal(-4))
}
