// Package sessions — session key builder and parser.
//
// Session keys follow the canonical format:
//
//	agent:{agentId}:{rest}
//
// Where {rest} depends on the conversation:
//
//	DM:            {channel}:dm:{peerId}
//	Group:         {channel}:group:{peerId}
//	Channel:       {channel}:channel:{peerId}
//	Slash command: {channel}:command:{commandName}:{senderId}
//
// Examples:
//
//	agent:main:slack:dm:U024BE7LH
//	agent:main:slack:channel:C0012AB3CD
//	agent:main:slack:command:openclaw:U024BE7LH
package sessions

import (
	"fmt"
	"strings"
)

// BuildSessionKey builds the canonical session key for a conversation.
func BuildSessionKey(agentID, channel, peerKind, peerID string) string {
	return fmt.Sprintf("agent:%s:%s:%s:%s", agentID, channel, peerKind, peerID)
}

// BuildCommandSessionKey builds the session key for a slash-command
// invocation from the agent id, the command namespace, and the sender.
// The leading "/" of the command name is not part of the namespace.
func BuildCommandSessionKey(agentID, channel, commandName, senderID string) string {
	name := strings.TrimPrefix(commandName, "/")
	return fmt.Sprintf("agent:%s:%s:command:%s:%s", agentID, channel, name, senderID)
}

// ParseSessionKey extracts the agentID and rest from a canonical
// session key. Returns ("", "") if the key is not in the expected format.
func ParseSessionKey(key string) (agentID, rest string) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 || parts[0] != "agent" {
		return "", ""
	}
	return parts[1], parts[2]
}

// IsCommandSession checks if a session key belongs to a slash-command
// invocation.
func IsCommandSession(key string) bool {
	_, rest := ParseSessionKey(key)
	parts := strings.SplitN(rest, ":", 3)
	return len(parts) >= 3 && parts[1] == "command"
}
