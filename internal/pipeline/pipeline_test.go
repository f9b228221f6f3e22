package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khorochbd/khoroch/internal/config"
	"github.com/khorochbd/khoroch/internal/extractor"
	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/overlay"
	"github.com/khorochbd/khoroch/internal/storage"
)

func testConfig(mode model.Mode) *config.Config {
	return &config.Config{
		Mode:               mode,
		Scope:              config.ScopeAll,
		TauHigh:            0.85,
		TauLow:             0.55,
		CoachingMinHistory: 5,
		Workers:            2,
		QueueSize:          16,
		ExtractorTimeout:   2 * time.Second,
		ResolveCacheTTL:    5 * time.Second,
	}
}

func newTestPipeline(t *testing.T, mode model.Mode) (*Pipeline, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	cfg := testConfig(mode)
	resolver := overlay.NewResolver(store, cfg.ResolveCacheTTL)
	return New(cfg, store, extractor.NewRegex(), resolver), store
}

func expenseMsg(messageID string) Message {
	return Message{
		ReceivedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		UserID:     "user-1",
		MessageID:  messageID,
		Text:       "ajj cha 50 taka khoroch korechi",
	}
}

func auditCount(t *testing.T, store *storage.SQLiteStorage, userID string) int {
	t.Helper()
	ccs, err := store.GetUserCCs(context.Background(), userID,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return len(ccs)
}

func ledgerCount(t *testing.T, store *storage.SQLiteStorage, userID string) int {
	t.Helper()
	n, err := store.CountUserTransactions(context.Background(), userID)
	require.NoError(t, err)
	return n
}

func TestProcessFallbackBypassesEverything(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeFallback)

	result, err := p.Process(context.Background(), expenseMsg("msg-1"))
	require.NoError(t, err)

	assert.True(t, result.Legacy)
	assert.Nil(t, result.CC)
	assert.Zero(t, auditCount(t, store, "user-1"))
	assert.Zero(t, ledgerCount(t, store, "user-1"))
}

func TestProcessShadowAuditsWithoutWriting(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeShadow)

	result, err := p.Process(context.Background(), expenseMsg("msg-1"))
	require.NoError(t, err)

	assert.True(t, result.Legacy, "user must see the legacy reply")
	assert.Equal(t, legacyReply(), result.Reply)
	assert.Zero(t, result.LedgerWrites)
	assert.Zero(t, ledgerCount(t, store, "user-1"))

	require.NotNil(t, result.CC)
	assert.Equal(t, model.DecisionAutoApply, result.CC.Decision,
		"shadow still computes the real decision for comparison")
	assert.Equal(t, 1, auditCount(t, store, "user-1"))
}

func TestProcessDryrunWritesButFramesAsPreview(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeDryrun)

	result, err := p.Process(context.Background(), expenseMsg("msg-1"))
	require.NoError(t, err)

	assert.False(t, result.Legacy)
	assert.True(t, strings.HasPrefix(result.Reply, "Preview: would log"), result.Reply)
	assert.Equal(t, 1, result.LedgerWrites)
	assert.Equal(t, 1, ledgerCount(t, store, "user-1"))
	assert.Equal(t, 1, auditCount(t, store, "user-1"))
}

func TestProcessOnConfirmsWrite(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)

	result, err := p.Process(context.Background(), expenseMsg("msg-1"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Reply, "Logged"), result.Reply)
	assert.Contains(t, result.Reply, "50.00 BDT")
	assert.Equal(t, 1, ledgerCount(t, store, "user-1"))

	txns, err := store.GetUserTransactions(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(5000), txns[0].AmountMinor)
	assert.Equal(t, result.CC.CCID, txns[0].SourceCCID)
}

func TestProcessReplayedMessageIsIdempotent(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	msg := expenseMsg("msg-1")

	first, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, 1, first.LedgerWrites)

	second, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, first.CC.CCID, second.CC.CCID, "same message, same command id")
	assert.Zero(t, second.LedgerWrites)
	assert.Equal(t, 1, ledgerCount(t, store, "user-1"))
	assert.Equal(t, 1, auditCount(t, store, "user-1"))
}

func TestProcessMultiItemMessage(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	msg := Message{
		ReceivedAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		UserID:     "user-1",
		MessageID:  "msg-lunch",
		Text:       "coffee 100 taka, lunch 300 taka diyechi",
	}

	result, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, 2, result.LedgerWrites, "one ledger row per parsed item")
	assert.Equal(t, 2, ledgerCount(t, store, "user-1"))
	assert.Equal(t, 1, auditCount(t, store, "user-1"), "one command per message")
	assert.Contains(t, result.Reply, "100.00 BDT for coffee")
	assert.Contains(t, result.Reply, "300.00 BDT for lunch")
}

func TestProcessAskOnceForVerblessMoney(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	msg := Message{
		ReceivedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UserID:     "user-1",
		MessageID:  "msg-1",
		Text:       "chá 50 taka kinechi",
	}

	result, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	require.NotNil(t, result.CC)
	assert.Equal(t, model.IntentClarifyExpense, result.CC.Intent)
	assert.Equal(t, model.DecisionAskOnce, result.CC.Decision)
	assert.Contains(t, result.Reply, "Did you spend")
	assert.Zero(t, ledgerCount(t, store, "user-1"), "nothing lands without confirmation")
}

func TestProcessAnalysisNeverTouchesLedger(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	msg := Message{
		ReceivedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UserID:     "user-1",
		MessageID:  "msg-1",
		Text:       "ei mash e khoroch koto 5000 chilo?",
	}

	result, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	require.NotNil(t, result.CC)
	assert.Equal(t, model.IntentAnalysis, result.CC.Intent)
	assert.Equal(t, model.DecisionRawOnly, result.CC.Decision)
	assert.Zero(t, ledgerCount(t, store, "user-1"))
	assert.Equal(t, 1, auditCount(t, store, "user-1"))
}

func TestProcessNewUsersScopeGate(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	p.cfg.Scope = config.ScopeNewUsers

	existing := expenseMsg("msg-1")
	existing.IsNewUser = false
	result, err := p.Process(context.Background(), existing)
	require.NoError(t, err)
	assert.True(t, result.Legacy)
	assert.Zero(t, auditCount(t, store, "user-1"))

	fresh := expenseMsg("msg-2")
	fresh.IsNewUser = true
	result, err = p.Process(context.Background(), fresh)
	require.NoError(t, err)
	assert.False(t, result.Legacy)
	assert.Equal(t, 1, auditCount(t, store, "user-1"))
}

// stuckExtractor blocks until the pipeline's timeout cancels it.
type stuckExtractor struct{}

func (stuckExtractor) Extract(ctx context.Context, _ string) ([]model.Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProcessExtractorTimeoutDegradesToRawOnly(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	cfg := testConfig(model.ModeOn)
	cfg.ExtractorTimeout = 10 * time.Millisecond
	p := New(cfg, store, stuckExtractor{}, overlay.NewResolver(store, cfg.ResolveCacheTTL))

	result, err := p.Process(context.Background(), expenseMsg("msg-1"))
	require.NoError(t, err, "a slow extractor must never fail the message")

	require.NotNil(t, result.CC)
	assert.Equal(t, model.DecisionRawOnly, result.CC.Decision)
	assert.Zero(t, result.CC.Confidence)
	assert.Zero(t, ledgerCount(t, store, "user-1"), "fail-safe means no uncertain write")
	assert.Equal(t, 1, auditCount(t, store, "user-1"), "the degraded command is still audited")
}

type recordingResponder struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingResponder) Respond(_ context.Context, _, _, reply string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	return nil
}

func TestRunDrainsQueueAcrossWorkers(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)

	messages := make(chan Message, 8)
	for i := 0; i < 5; i++ {
		msg := expenseMsg("msg-" + string(rune('a'+i)))
		messages <- msg
	}
	close(messages)

	responder := &recordingResponder{}
	require.NoError(t, p.Run(context.Background(), messages, responder))

	assert.Len(t, responder.replies, 5)
	assert.Equal(t, 5, auditCount(t, store, "user-1"))
	assert.Equal(t, 5, ledgerCount(t, store, "user-1"))
}

func TestProcessOnIncludesRuleTransparencyNote(t *testing.T) {
	p, store := newTestPipeline(t, model.ModeOn)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, &model.Rule{
		UserID:        "user-1",
		MerchantMatch: "cha",
		ApplyField:    model.FieldCategory,
		ApplyValue:    "beverages",
		Active:        true,
	}))

	result, err := p.Process(ctx, expenseMsg("msg-1"))
	require.NoError(t, err)

	assert.Contains(t, result.Reply, "Categorized as beverages by your rule")
}
