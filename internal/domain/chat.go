package domain

import "strings"

// GroupChatPrefix marks a chat/thread identifier as a group chat. Direct
// chats use the recipient's user id as the thread identifier.
const GroupChatPrefix = "group_"

type ChatMessage struct {
	MessageID    string   `json:"id" dynamodbav:"message_id"`
	SenderID     string   `json:"sender_id" dynamodbav:"sender_id"`
	RecipientID  string   `json:"recipient_id" dynamodbav:"recipient_id"`
	Text         string   `json:"text" dynamodbav:"text"`
	ChatName     string   `json:"chat_name,omitempty" dynamodbav:"chat_name"`
	Participants []string `json:"participants,omitempty" dynamodbav:"participants"`
	AppID        string   `json:"app_id,omitempty" dynamodbav:"app_id"`
}

// IsGroupChat reports whether the chat/thread identifier follows the group
// naming convention.
func IsGroupChat(chatID string) bool {
	return strings.HasPrefix(chatID, GroupChatPrefix)
}
