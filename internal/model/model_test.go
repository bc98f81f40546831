package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from ResponseStatus
		to   ResponseStatus
		want bool
	}{
		{"new to evaluated", StatusNew, StatusEvaluated, true},
		{"new to skipped", StatusNew, StatusSkipped, true},
		{"new to completed", StatusNew, StatusCompleted, false},
		{"evaluated to interview", StatusEvaluated, StatusInterviewTG, true},
		{"dialog approved to hh chat", StatusDialogApproved, StatusInterviewHHChat, true},
		{"interview to completed", StatusInterviewTG, StatusCompleted, true},
		{"interview to skipped", StatusInterviewHHChat, StatusSkipped, false},
		{"completed is terminal", StatusCompleted, StatusSkipped, false},
		{"skipped is terminal", StatusSkipped, StatusEvaluated, false},
		{"no reverse transition", StatusEvaluated, StatusNew, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	if !StatusCompleted.Terminal() || !StatusSkipped.Terminal() {
		t.Fatalf("expected COMPLETED and SKIPPED to be terminal")
	}
	if StatusInterviewTG.Terminal() {
		t.Fatalf("INTERVIEW_TELEGRAM must not be terminal")
	}
}

func TestChannelInterviewStatus(t *testing.T) {
	t.Parallel()

	if got := ChannelHHChat.InterviewStatus(); got != StatusInterviewHHChat {
		t.Fatalf("expected INTERVIEW_HH_CHAT, got %s", got)
	}
	for _, ch := range []Channel{ChannelTelegramUsername, ChannelTelegramPhone, ChannelTelegramPeer} {
		if got := ch.InterviewStatus(); got != StatusInterviewTG {
			t.Fatalf("expected INTERVIEW_TELEGRAM for %s, got %s", ch, got)
		}
	}
}

func TestQuestionNumber(t *testing.T) {
	t.Parallel()

	conv := &Conversation{}
	if got := conv.QuestionNumber(); got != 1 {
		t.Fatalf("empty conversation should be at question 1, got %d", got)
	}

	meta := conv.Meta.Data()
	meta.QuestionAnswers = append(meta.QuestionAnswers,
		QuestionAnswer{Question: "q1", Answer: "a1"},
		QuestionAnswer{Question: "q2", Answer: "a2"},
	)
	conv.Meta = datatypes.NewJSONType(meta)

	if got := conv.QuestionNumber(); got != 3 {
		t.Fatalf("expected question number 3, got %d", got)
	}
}
