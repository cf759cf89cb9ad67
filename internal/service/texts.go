package service

import "strings"

// Texts are the user-facing strings. {uid} and {question} are
// substituted where they appear.
type Texts struct {
	Greeting         string `yaml:"greeting"`
	UsageHint        string `yaml:"usage_hint"`
	Blocked          string `yaml:"blocked"`
	ChallengePrompt  string `yaml:"challenge_prompt"`
	RePrompt         string `yaml:"re_prompt"`
	VerifySuccess    string `yaml:"verify_success"`
	WrongAnswer      string `yaml:"wrong_answer"`
	ChallengeExpired string `yaml:"challenge_expired"`
	RouteNotFound    string `yaml:"route_not_found"`
	SelfBlock        string `yaml:"self_block"`
	BlockDone        string `yaml:"block_done"`
	UnblockDone      string `yaml:"unblock_done"`
	StatusBlocked    string `yaml:"status_blocked"`
	StatusNotBlocked string `yaml:"status_not_blocked"`
	FraudWarning     string `yaml:"fraud_warning"`
}

// DefaultTexts returns the built-in texts
func DefaultTexts() Texts {
	return Texts{
		Greeting: "Hello! This is my chat bot. Please pass verification to chat with me. " +
			"Your messages will be forwarded to me.\n\nBot Created Via @Squarelan",
		UsageHint: "Usage: Reply to a forwarded message and send your reply, " +
			"or use `/block`, `/unblock`, `/checkblock` commands",
		Blocked:          "You are blocked",
		ChallengePrompt:  "Please answer the following question to verify you are not a bot:\n\n{question} = ?",
		RePrompt:         "Please click the button above to select your answer",
		VerifySuccess:    "Verification successful! You can now use the bot.",
		WrongAnswer:      "Wrong answer, please try again",
		ChallengeExpired: "This question is no longer valid, please send a new message",
		RouteNotFound:    "Cannot find corresponding user",
		SelfBlock:        "Cannot block yourself",
		BlockDone:        "UID:{uid} blocked successfully",
		UnblockDone:      "UID:{uid} unblocked successfully",
		StatusBlocked:    "UID:{uid} is blocked",
		StatusNotBlocked: "UID:{uid} is not blocked",
		FraudWarning:     "Warning: Fraud detected\nUID: {uid}",
	}
}

// FillDefaults replaces empty fields with the built-in texts
func (t *Texts) FillDefaults() {
	d := DefaultTexts()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&t.Greeting, d.Greeting)
	fill(&t.UsageHint, d.UsageHint)
	fill(&t.Blocked, d.Blocked)
	fill(&t.ChallengePrompt, d.ChallengePrompt)
	fill(&t.RePrompt, d.RePrompt)
	fill(&t.VerifySuccess, d.VerifySuccess)
	fill(&t.WrongAnswer, d.WrongAnswer)
	fill(&t.ChallengeExpired, d.ChallengeExpired)
	fill(&t.RouteNotFound, d.RouteNotFound)
	fill(&t.SelfBlock, d.SelfBlock)
	fill(&t.BlockDone, d.BlockDone)
	fill(&t.UnblockDone, d.UnblockDone)
	fill(&t.StatusBlocked, d.StatusBlocked)
	fill(&t.StatusNotBlocked, d.StatusNotBlocked)
	fill(&t.FraudWarning, d.FraudWarning)
}

func withUID(tmpl, uid string) string {
	return strings.ReplaceAll(tmpl, "{uid}", uid)
}

func withQuestion(tmpl, question string) string {
	return strings.ReplaceAll(tmpl, "{question}", question)
}
