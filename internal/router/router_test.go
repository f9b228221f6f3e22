package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khorochbd/khoroch/internal/model"
)

func TestRoutePrecedence(t *testing.T) {
	scope := Scope{TransactionCount: 10, CoachingMinHistory: 5}

	tests := []struct {
		name string
		text string
		want model.Intent
	}{
		{
			name: "admin command wins over everything",
			text: "/mode shadow 50 taka",
			want: model.IntentAdmin,
		},
		{
			name: "audit request",
			text: "show original for my last message",
			want: model.IntentPCAAudit,
		},
		{
			name: "money with past-tense verb is an expense",
			text: "ajj cha 50 taka khoroch korechi",
			want: model.IntentExpenseLog,
		},
		{
			name: "english expense",
			text: "spent 200 on groceries",
			want: model.IntentExpenseLog,
		},
		{
			name: "money without a verb asks for clarification",
			text: "chá 50 taka kinechi",
			want: model.IntentClarifyExpense,
		},
		{
			name: "bare amount clarifies",
			text: "rickshaw 30",
			want: model.IntentClarifyExpense,
		},
		{
			name: "money plus analysis keyword resolves to analysis",
			text: "give me a breakdown of the 500 taka",
			want: model.IntentAnalysis,
		},
		{
			name: "time window alone triggers analysis",
			text: "ei mash কেমন gelo",
			want: model.IntentAnalysis,
		},
		{
			name: "analysis keyword alone",
			text: "monthly summary please",
			want: model.IntentAnalysis,
		},
		{
			name: "faq",
			text: "what can you do",
			want: model.IntentFAQ,
		},
		{
			name: "coaching with enough history",
			text: "how can i save more",
			want: model.IntentCoaching,
		},
		{
			name: "default smalltalk",
			text: "hello there",
			want: model.IntentSmalltalk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.text, scope))
		})
	}
}

func TestRouteAnalysisBeatsExpenseWithMoney(t *testing.T) {
	// The load-bearing precedence edge case: money present plus an explicit
	// analysis request must never produce an expense intent.
	scope := Scope{TransactionCount: 0, CoachingMinHistory: 5}

	texts := []string{
		"hishab dekhao 100 taka",
		"breakdown of the 500 i spent",
		"last week total 1200",
		"gotokal 50 taka khoroch korechi hisab",
	}
	for _, text := range texts {
		got := Route(text, scope)
		assert.Equal(t, model.IntentAnalysis, got, "text %q", text)
		assert.NotEqual(t, model.IntentExpenseLog, got, "text %q", text)
	}
}

func TestRouteCoachingGatedByHistory(t *testing.T) {
	text := "any advice for saving"

	noHistory := Scope{TransactionCount: 0, CoachingMinHistory: 5}
	assert.Equal(t, model.IntentSmalltalk, Route(text, noHistory),
		"users with no data get no coaching")

	withHistory := Scope{TransactionCount: 5, CoachingMinHistory: 5}
	assert.Equal(t, model.IntentCoaching, Route(text, withHistory),
		"threshold is inclusive")
}

func TestRouteIsPure(t *testing.T) {
	scope := Scope{TransactionCount: 3, CoachingMinHistory: 5}
	text := "ajj cha 50 taka khoroch korechi"

	first := Route(text, scope)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Route(text, scope))
	}
}

func TestRouteTypoTolerance(t *testing.T) {
	scope := Scope{}

	// Romanized Bengali spelling drift on a non-ledger keyword.
	assert.Equal(t, model.IntentAnalysis, Route("hishob dekhao", scope))

	// Expense verbs stay exact: a near-miss verb must not log money.
	assert.Equal(t, model.IntentClarifyExpense, Route("cha 50 taka korechii na", scope))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello   World  ", "hello world"},
		{"Cha 50 Taka!", "cha 50 taka"},
		{"KHOROCH\tkorechi?", "khoroch korechi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestMoneyPresent(t *testing.T) {
	assert.True(t, MoneyPresent(Normalize("cha 50 taka")))
	assert.True(t, MoneyPresent(Normalize("coffee 100, lunch 300")))
	assert.True(t, MoneyPresent(Normalize("paid 12.50")))
	assert.False(t, MoneyPresent(Normalize("hello there")))
	assert.False(t, MoneyPresent(Normalize("room4rent")))
}
