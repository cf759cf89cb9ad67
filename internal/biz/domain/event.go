package domain

// Event is an inbound update handed to the dispatcher. It is either a
// *Message or a *CallbackAnswer.
type Event interface {
	isEvent()
}

// Message is a chat message received by the bot
type Message struct {
	ChatID           string
	MessageID        int
	Text             string
	SenderIsOperator bool
	ReplyToMessageID int // 0 when the message is not a reply
}

func (*Message) isEvent() {}

// IsReply reports whether the message references an earlier message
func (m *Message) IsReply() bool {
	return m.ReplyToMessageID != 0
}

// CallbackAnswer is a button press on a challenge keyboard
type CallbackAnswer struct {
	CallbackID      string
	FromUserID      string
	Payload         string
	OriginMessageID int
}

func (*CallbackAnswer) isEvent() {}

// Button is one inline keyboard button
type Button struct {
	Text string
	Data string
}

// SendOptions carries optional presentation for an outgoing text
type SendOptions struct {
	Keyboard [][]Button
}

// FraudVerdict is the outcome of a reputation lookup
type FraudVerdict int

const (
	FraudClear FraudVerdict = iota
	FraudSuspect
)

func (v FraudVerdict) String() string {
	if v == FraudSuspect {
		return "suspect"
	}
	return "clear"
}
