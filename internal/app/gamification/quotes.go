package gamification

import "math/rand"

// motivationalQuotes are shown alongside completion notifications.
var motivationalQuotes = []string{
	"Focus is the key to productivity.",
	"Great things are done by a series of small things brought together.",
	"One tomato at a time leads to success.",
	"The secret of getting ahead is getting started.",
	"Progress, not perfection.",
	"Small steps every day lead to big results.",
	"You're doing great! Keep going.",
	"Every tomato brings you closer to your goal.",
	"Consistency is the path to mastery.",
	"Take a break, you've earned it!",
	"Focus on progress, not perfection.",
	"Your dedication is inspiring.",
	"Rest is productive too.",
	"One task at a time, one tomato at a time.",
	"You're building momentum!",
	"Stay focused, stay productive.",
	"Break time! Recharge and return stronger.",
	"Excellence is a habit, not an act.",
	"Keep up the great work!",
	"Time well spent is never wasted.",
}

// RandomQuote picks a motivational quote.
func RandomQuote() string {
	return motivationalQuotes[rand.Intn(len(motivationalQuotes))]
}
