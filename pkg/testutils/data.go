package testutils

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/millie-ai/millie/pkg/models"
)

var TestMessages = []models.ChatMessage{
	{
		Role:    models.RoleUser,
		Content: "Hi Millie, what happened in the community this week?",
	},
	{
		Role:    models.RoleAssistant,
		Content: "We held the weekly meeting on Monday and talked about the new validator release.",
	},
	{
		Role:    models.RoleUser,
		Content: "What is the current price of BTC?",
	},
}

// TestSummaryJSON is a well-formed summarization response wrapped in a code
// fence, the way models often return it.
const TestSummaryJSON = "```json\n" + `{
  "topic": "Validator Launch",
  "keyPoints": ["Validators go live next week", "Bridge audit completed"],
  "mentionedCoins": ["PLS", "HEX"],
  "actionItems": ["Publish the validator guide"]
}` + "\n```"

const TestDashboardJSON = `{
  "dailyQuotes": ["Patience pays.", "Build in public.", "Stay curious."],
  "communityNews": [{"title": "Validators", "content": "Validators go live next week.", "type": "update"}],
  "coinOfWeek": {"name": "PulseX", "symbol": "PLSX", "reason": "Volume up", "targetPrice": "$0.0001", "analysis": "Momentum"}
}`

// GenerateTranscript returns roughly n characters of fake meeting text.
func GenerateTranscript(n int) string {
	var sb strings.Builder
	for sb.Len() < n {
		sb.WriteString(gofakeit.Name())
		sb.WriteString(": ")
		sb.WriteString(gofakeit.Sentence(12))
		sb.WriteString("\n")
	}
	return sb.String()
}
