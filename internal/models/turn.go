package models

// Sender identifies who authored a turn
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// PendingText is the text carried by the placeholder turn. Pending state is
// tracked separately, so a response that happens to equal it is still a reply.
const PendingText = "__typing__"

// DefaultFailureText is shown in place of a response when the turn fails
const DefaultFailureText = "Error: Unable to get response."

// Turn is one message of the transcript
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`

	// pending is set only by PendingTurn
	pending bool
}

// UserTurn builds a turn authored by the user
func UserTurn(text string) Turn {
	return Turn{Sender: SenderUser, Text: text}
}

// BotTurn builds a turn authored by the bot
func BotTurn(text string) Turn {
	return Turn{Sender: SenderBot, Text: text}
}

// PendingTurn builds the bot placeholder shown while a request is in flight
func PendingTurn() Turn {
	return Turn{Sender: SenderBot, Text: PendingText, pending: true}
}

// IsPending reports whether the turn is the in-flight placeholder
func (t Turn) IsPending() bool {
	return t.pending
}

// IsUser reports whether the turn was authored by the user
func (t Turn) IsUser() bool {
	return t.Sender == SenderUser
}
