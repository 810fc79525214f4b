// Package routing resolves which agent handles a command and under
// which session key, from the binding table in config.
package routing

import (
	"github.com/tanguofu/openclaw/internal/config"
	"github.com/tanguofu/openclaw/internal/sessions"
)

// Peer identifies the conversation a command arrived in.
type Peer struct {
	Kind string // "dm", "group", or "channel"
	ID   string
}

// RouteRequest carries the identity facts a route is derived from.
type RouteRequest struct {
	Channel   string // platform name, e.g. "slack"
	AccountID string // bot account id on the platform
	TeamID    string // workspace id, may be empty
	Peer      Peer
	SenderID  string
	Command   string // slash-command namespace for the session key
}

// AgentRoute is the resolved routing decision for one command.
// Immutable for the duration of the command handling.
type AgentRoute struct {
	AgentID    string
	SessionKey string
	AccountID  string
}

// ResolveAgentRoute walks the config bindings most-specific-first and
// returns the route for the first match, falling back to the default
// agent. The session key is derived from the agent id, the command
// namespace, and the sender.
func ResolveAgentRoute(cfg *config.Config, req RouteRequest) AgentRoute {
	agentID := cfg.DefaultAgentID()
	for _, binding := range cfg.Bindings {
		if bindingMatches(binding.Match, req) {
			agentID = binding.AgentID
			break
		}
	}

	sessionKey := sessions.BuildCommandSessionKey(agentID, req.Channel, req.Command, req.SenderID)
	if req.Command == "" {
		sessionKey = sessions.BuildSessionKey(agentID, req.Channel, req.Peer.Kind, req.Peer.ID)
	}

	return AgentRoute{
		AgentID:    agentID,
		SessionKey: sessionKey,
		AccountID:  req.AccountID,
	}
}

func bindingMatches(m config.BindingMatch, req RouteRequest) bool {
	if m.Channel != req.Channel {
		return false
	}
	if m.AccountID != "" && m.AccountID != req.AccountID {
		return false
	}
	if m.TeamID != "" && m.TeamID != req.TeamID {
		return false
	}
	if m.Peer != nil {
		if m.Peer.Kind != req.Peer.Kind || m.Peer.ID != req.Peer.ID {
			return false
		}
	}
	return true
}
