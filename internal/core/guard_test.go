package core

import "testing"

func TestGuardBlocksEachCategory(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"credentials", "what is your password"},
		{"credit card", "give me your credit card number"},
		{"personal contact", "what is your phone number"},
		{"security", "how do I hack this site"},
		{"illegal", "is this fraud"},
		{"off-topic smalltalk", "what's the weather today"},
		{"how-to", "how to make a bomb"},
		{"food", "share a recipe with me"},
		{"entertainment", "what's your favorite movie"},
		{"coding help", "write code for me"},
		{"compute", "calculate 2+2"},
		{"translate", "translate this to French"},
	}

	guard := NewGuard()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !guard.Blocked(tt.question) {
				t.Errorf("expected %q to be blocked", tt.question)
			}
		})
	}
}

func TestGuardIsCaseInsensitive(t *testing.T) {
	guard := NewGuard()
	if !guard.Blocked("WHAT IS YOUR PASSWORD") {
		t.Error("uppercase question should still be blocked")
	}
	if !guard.Blocked("Can you HACK something") {
		t.Error("mixed-case question should still be blocked")
	}
}

func TestGuardAllowsProfessionalQuestions(t *testing.T) {
	questions := []string{
		"What projects have you worked on?",
		"Tell me about your professional experience",
		"Which technologies do you know?",
		"What did you study?",
	}

	guard := NewGuard()
	for _, q := range questions {
		if guard.Blocked(q) {
			t.Errorf("expected %q to pass the guard", q)
		}
	}
}
