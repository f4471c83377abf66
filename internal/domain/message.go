package domain

import (
	"fmt"
	"time"
)

// SystemName is the author of server-generated notices. It is not reserved:
// a client may pick the same display name.
const SystemName = "Admin"

// TimeLayout renders message times as hours, minutes and seconds.
const TimeLayout = "15:04:05"

// Message is a chat line or a system notice.
// Time is for display only and must not be used for ordering.
type Message struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// NewMessage stamps text from author with at, formatted with TimeLayout.
func NewMessage(author, text string, at time.Time) Message {
	return Message{
		Name: author,
		Text: text,
		Time: at.Format(TimeLayout),
	}
}

// SystemMessage is a NewMessage authored by SystemName.
func SystemMessage(text string, at time.Time) Message {
	return NewMessage(SystemName, text, at)
}

func WelcomeText(id ConnID) string {
	return fmt.Sprintf("Welcome! Your user id is %s", id.Short())
}

func EnteredSelfText(room RoomName) string {
	return fmt.Sprintf("You have entered the room %s", room)
}

func EnteredText(name string) string {
	return fmt.Sprintf("%s entered the room", name)
}

func LeftText(name string) string {
	return fmt.Sprintf("%s left the room", name)
}
