package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

func testCandidate() *model.Candidate {
	return &model.Candidate{
		MerchantHint: "cha",
		Currency:     "BDT",
		AmountMinor:  5000,
		Confidence:   0.95,
		VerbPresent:  true,
	}
}

func TestBuildDeterministicID(t *testing.T) {
	receivedAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	first, err := Build(model.IntentExpenseLog, testCandidate(), "user-1", "msg-1", receivedAt, "cha 50 taka khoroch korechi")
	require.NoError(t, err)

	second, err := Build(model.IntentExpenseLog, testCandidate(), "user-1", "msg-1", receivedAt, "cha 50 taka khoroch korechi")
	require.NoError(t, err)

	assert.Equal(t, first.CCID, second.CCID, "identical inputs must hash identically")
	assert.Len(t, first.CCID, 64)
}

func TestBuildIDInsensitiveToTextNoise(t *testing.T) {
	// The webhook retry may re-deliver the text with different surrounding
	// whitespace; normalization keeps the id stable.
	receivedAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	a, err := Build(model.IntentExpenseLog, testCandidate(), "u", "m", receivedAt, "Cha 50 taka khoroch korechi")
	require.NoError(t, err)
	b, err := Build(model.IntentExpenseLog, testCandidate(), "u", "m", receivedAt, "  cha 50  taka khoroch korechi ")
	require.NoError(t, err)

	assert.Equal(t, a.CCID, b.CCID)
}

func TestBuildIDChangesWithInputs(t *testing.T) {
	receivedAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	base, err := Build(model.IntentExpenseLog, testCandidate(), "u", "m", receivedAt, "cha 50 taka korechi")
	require.NoError(t, err)

	otherUser, err := Build(model.IntentExpenseLog, testCandidate(), "u2", "m", receivedAt, "cha 50 taka korechi")
	require.NoError(t, err)
	assert.NotEqual(t, base.CCID, otherUser.CCID)

	otherMsg, err := Build(model.IntentExpenseLog, testCandidate(), "u", "m2", receivedAt, "cha 50 taka korechi")
	require.NoError(t, err)
	assert.NotEqual(t, base.CCID, otherMsg.CCID)

	otherTime, err := Build(model.IntentExpenseLog, testCandidate(), "u", "m", receivedAt.Add(time.Second), "cha 50 taka korechi")
	require.NoError(t, err)
	assert.NotEqual(t, base.CCID, otherTime.CCID)
}

func TestBuildExpenseWithoutCandidate(t *testing.T) {
	_, err := Build(model.IntentExpenseLog, nil, "u", "m", time.Now(), "spent 50")
	assert.ErrorIs(t, err, common.ErrMalformedCandidate)

	_, err = Build(model.IntentClarifyExpense, nil, "u", "m", time.Now(), "cha 50")
	assert.ErrorIs(t, err, common.ErrMalformedCandidate)
}

func TestBuildSchemaErrors(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		userID    string
		messageID string
		at        time.Time
		intent    model.Intent
	}{
		{"missing user", "", "m", now, model.IntentSmalltalk},
		{"missing message", "u", "", now, model.IntentSmalltalk},
		{"zero time", "u", "m", time.Time{}, model.IntentSmalltalk},
		{"bogus intent", "u", "m", now, model.Intent("NONSENSE")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.intent, nil, tt.userID, tt.messageID, tt.at, "hi")
			assert.ErrorIs(t, err, common.ErrSchema)
		})
	}
}

func TestBuildPopulatesFields(t *testing.T) {
	receivedAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.FixedZone("BST", 6*3600))

	cc, err := Build(model.IntentExpenseLog, testCandidate(), "user-1", "msg-1", receivedAt, "cha 50 taka khoroch korechi")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cc.UserID)
	assert.Equal(t, "msg-1", cc.MessageID)
	assert.Equal(t, model.IntentExpenseLog, cc.Intent)
	assert.Equal(t, model.SchemaVersion, cc.SchemaVersion)
	assert.Equal(t, time.UTC, cc.ReceivedAt.Location())
	assert.InDelta(t, 0.95, cc.Confidence, 1e-9)
	assert.Equal(t, int64(5000), cc.Slots.AmountMinor)
	assert.Equal(t, "BDT", cc.Slots.Currency)
	assert.Empty(t, cc.Decision, "builder leaves the decision to the engine")
}
