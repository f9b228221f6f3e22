package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

func TestRegexExtractSingleAmount(t *testing.T) {
	ext := NewRegex()

	candidates, err := ext.Extract(context.Background(), "ajj cha 50 taka khoroch korechi")
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, int64(5000), c.AmountMinor, "50 taka is 5000 minor units")
	assert.Equal(t, "BDT", c.Currency)
	assert.True(t, c.VerbPresent)
	assert.InDelta(t, 0.95, c.Confidence, 1e-9, "explicit currency plus verb")
}

func TestRegexExtractMultiItem(t *testing.T) {
	ext := NewRegex()

	candidates, err := ext.Extract(context.Background(), "coffee 100, lunch 300")
	require.NoError(t, err)
	require.Len(t, candidates, 2, "one candidate per comma-separated item")

	assert.Equal(t, int64(10000), candidates[0].AmountMinor)
	assert.Contains(t, candidates[0].MerchantHint, "coffee")
	assert.Equal(t, int64(30000), candidates[1].AmountMinor)
	assert.Contains(t, candidates[1].MerchantHint, "lunch")
}

func TestRegexExtractConfidenceTiers(t *testing.T) {
	ext := NewRegex()

	tests := []struct {
		text string
		want float64
	}{
		{"cha 50 taka khoroch korechi", 0.95},
		{"cha 50 taka", 0.70},
		{"spent 50", 0.70},
		{"rickshaw 30", 0.40},
	}
	for _, tt := range tests {
		candidates, err := ext.Extract(context.Background(), tt.text)
		require.NoError(t, err, tt.text)
		require.NotEmpty(t, candidates, tt.text)
		assert.InDelta(t, tt.want, candidates[0].Confidence, 1e-9, "text %q", tt.text)
	}
}

func TestRegexExtractNoMoney(t *testing.T) {
	ext := NewRegex()

	candidates, err := ext.Extract(context.Background(), "hello, how are you")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// slowExtractor blocks until its context is canceled.
type slowExtractor struct{}

func (slowExtractor) Extract(ctx context.Context, _ string) ([]model.Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeoutDegradesFailSafe(t *testing.T) {
	ext := NewWithTimeout(slowExtractor{}, 10*time.Millisecond)

	start := time.Now()
	candidates, err := ext.Extract(context.Background(), "cha 50 taka")

	assert.ErrorIs(t, err, common.ErrExtractionTimeout)
	assert.Nil(t, candidates)
	assert.Less(t, time.Since(start), time.Second, "must not block past the deadline")
}

func TestWithTimeoutPassesThrough(t *testing.T) {
	ext := NewWithTimeout(NewRegex(), time.Second)

	candidates, err := ext.Extract(context.Background(), "cha 50 taka")
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}
