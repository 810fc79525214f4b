package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tanguofu/openclaw/internal/config"
	"github.com/tanguofu/openclaw/internal/routing"
	"github.com/tanguofu/openclaw/internal/store"
)

// User-visible ephemeral messages. Policy rejections get specific text;
// unexpected failures share one generic message.
const (
	msgEmptyPrompt       = "Nothing to do: add a prompt after the command."
	msgChannelNotAllowed = "This channel is not allowed to run commands."
	msgDMsDisabled       = "Direct messages are disabled for this bot."
	msgNotAuthorized     = "You are not authorized to use this command."
	msgRateLimited       = "Too many commands. Try again in a minute."
	msgNoOutput          = "The agent produced no output."
	msgInternalError     = "Something went wrong while handling the command."
)

const channelName = "slack"

// HandlerOptions wires the pipeline's collaborators.
type HandlerOptions struct {
	// Config returns the current config snapshot. Called once per
	// command so hot-reloaded channel settings apply to the next
	// invocation.
	Config func() *config.Config

	// BotUserID is the bot's own user identity; commands from it are
	// dropped silently.
	BotUserID string

	// AccountID identifies the bot account for route resolution
	// (usually the Slack app/bot ID).
	AccountID string

	Directory    Directory
	ChannelGate  ChannelPredicate
	Pairing      store.PairingStore
	ChannelAllow store.ChannelAllowStore
	Dispatcher   Dispatcher
	Limiter      *CommandLimiter
}

// Handler is the slash-command authorization pipeline. Each inbound
// command is handled independently; the only shared state lives in the
// external pairing and allow-list stores.
type Handler struct {
	opts HandlerOptions
}

// NewHandler creates the command pipeline.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Limiter == nil {
		opts.Limiter = NewCommandLimiter(0)
	}
	return &Handler{opts: opts}
}

// HandleCommand is the single entry point for inbound slash commands.
// It never panics past its boundary and never leaves a command
// unacknowledged: unexpected failures are logged once and answered with
// a generic ephemeral message.
func (h *Handler) HandleCommand(ctx context.Context, req CommandRequest) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("command handling panicked",
				"command", req.Command.Name, "user_id", req.Command.UserID, "panic", r)
			h.respond(req, msgInternalError)
		}
	}()

	if err := h.handle(ctx, req); err != nil {
		slog.Error("command handling failed",
			"command", req.Command.Name, "user_id", req.Command.UserID, "error", err)
		h.respond(req, msgInternalError)
	}
}

// handle runs the ordered pipeline states. Policy rejections respond
// and return nil; only unexpected failures return an error.
func (h *Handler) handle(ctx context.Context, req CommandRequest) error {
	cmd := req.Command

	// 1. Empty prompt: reject before acknowledging as a real invocation.
	prompt := strings.TrimSpace(cmd.Text)
	if prompt == "" {
		h.respond(req, msgEmptyPrompt)
		return nil
	}

	// 2. Self message: silently drop.
	if cmd.UserID != "" && cmd.UserID == h.opts.BotUserID {
		return nil
	}

	// The platform's interaction-latency contract requires the ack
	// before any time-consuming work (directory lookups, store reads,
	// dispatch). Only cheap checks may precede it.
	if req.Acknowledge != nil {
		if err := req.Acknowledge(); err != nil {
			return fmt.Errorf("acknowledge command: %w", err)
		}
	}

	cfg := h.opts.Config()

	prompt = truncatePrompt(prompt, cfg.Gateway.MaxPromptChars)

	if !h.opts.Limiter.Allow(cmd.UserID) {
		slog.Debug("command rate limited", "user_id", cmd.UserID)
		h.respond(req, msgRateLimited)
		return nil
	}

	// Resolve conversation metadata. A failed lookup degrades to the
	// fields carried on the command itself.
	info := h.lookupChannelInfo(ctx, cmd)
	ref := ChannelRef{ID: cmd.ChannelID, Name: cmd.ChannelName, Type: "channel"}
	if info != nil {
		if info.Name != "" {
			ref.Name = info.Name
		}
		ref.Type = info.Type
	} else if cmd.ChannelName == "directmessage" {
		// Slash payloads name DM conversations "directmessage".
		ref.Type = "im"
	}

	// 3. Generic channel admission, before any type-specific policy.
	if h.opts.ChannelGate != nil && !h.opts.ChannelGate(ref) {
		slog.Debug("command rejected by channel gate", "channel_id", ref.ID, "channel", ref.Name)
		h.respond(req, msgChannelNotAllowed)
		return nil
	}

	peerKind := PeerKindForChannelType(ref.Type)

	var resolved ResolvedChannelConfig
	authorized := false

	switch peerKind {
	case PeerDM:
		ok, auth, err := h.checkDM(ctx, cfg, req)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		authorized = auth
		resolved = ResolvedChannelConfig{Allowed: true, RequireMention: false}

	default:
		// 5. Room branch: per-channel config AND access-group policy.
		resolved = ResolveChannelConfig(ref.ID, ref.Name, cfg.Slack.Channels, cfg.Slack.DefaultRequireMention)
		if !resolved.Allowed {
			slog.Debug("command rejected: channel disallowed by config", "channel_id", ref.ID)
			h.respond(req, msgChannelNotAllowed)
			return nil
		}
		if policy := GroupPolicy(cfg.Slack.GroupPolicy); policy != "" {
			// The gate's channel input is list membership, not the
			// resolver's open-by-default Allowed: a configured channels
			// map admits only channels actually present in it.
			listed := lookupChannelEntry(ref.ID, ref.Name, cfg.Slack.Channels) != nil
			if !GateAllows(policy, len(cfg.Slack.Channels) > 0, listed && resolved.Allowed) {
				slog.Debug("command rejected by access-group gate",
					"channel_id", ref.ID, "group_policy", string(policy))
				h.respond(req, msgChannelNotAllowed)
				return nil
			}
		}

		// 6. Per-user allow-list, rooms only. Groups and DMs are
		// already gated above.
		if peerKind == PeerChannel && len(resolved.Users) > 0 {
			name := cmd.UserName
			if user := h.lookupUserInfo(ctx, cmd.UserID); user != nil && user.Name != "" {
				name = user.Name
			}
			if !AllowListMatches(resolved.Users, cmd.UserID, name) {
				slog.Debug("command rejected by channel user list",
					"channel_id", ref.ID, "user_id", cmd.UserID)
				h.respond(req, msgNotAuthorized)
				return nil
			}
		}
		authorized = true
	}

	// 7. Context construction.
	route := routing.ResolveAgentRoute(cfg, routing.RouteRequest{
		Channel:   channelName,
		AccountID: h.opts.AccountID,
		TeamID:    cmd.TeamID,
		Peer:      routing.Peer{Kind: peerKind, ID: ref.ID},
		SenderID:  cmd.UserID,
		Command:   cmd.Name,
	})

	description := ""
	if info != nil {
		description = BuildChannelDescription(info.Topic, info.Purpose)
	}

	routed := &RouteContext{
		AgentID:            route.AgentID,
		SessionKey:         route.SessionKey,
		AccountID:          route.AccountID,
		Channel:            ref,
		PeerKind:           peerKind,
		UserID:             cmd.UserID,
		Prompt:             prompt,
		ChannelDescription: description,
		SystemPrompt:       BuildSystemPrompt(description, resolved.SystemPrompt),
		CommandAuthorized:  authorized,
	}

	// 8. Dispatch. Zero replies across all kinds gets an explicit
	// answer rather than silence.
	counts, err := h.opts.Dispatcher.Dispatch(ctx, routed, DispatchOptions{
		SkillFilter: resolved.Skills,
		OnError: func(err error, scope string) {
			slog.Error("dispatch error", "scope", scope, "session", route.SessionKey, "error", err)
		},
		Deliver: func(payload ReplyPayload) error {
			return req.Respond(payload.Text)
		},
	})
	if err != nil {
		return fmt.Errorf("dispatch command: %w", err)
	}
	if counts.Total() == 0 {
		h.respond(req, msgNoOutput)
	}
	return nil
}

// checkDM runs the DM branch. Returns (proceed, commandAuthorized, err).
// commandAuthorized is true under the "open" policy or on an allow-list
// match; its downstream consumption belongs to the dispatch layer.
func (h *Handler) checkDM(ctx context.Context, cfg *config.Config, req CommandRequest) (bool, bool, error) {
	cmd := req.Command

	policy := cfg.Slack.DMPolicy
	if policy == "" {
		policy = "pairing"
	}

	switch policy {
	case "disabled":
		slog.Debug("command rejected: DMs disabled", "user_id", cmd.UserID)
		h.respond(req, msgDMsDisabled)
		return false, false, nil

	case "open":
		return true, true, nil
	}

	// Restrictive policies resolve the sender against the union of the
	// static allow_from list and the pairing-approved store entries.
	read := h.readChannelAllow(ctx)
	entries := unionAllowList(cfg.Slack.AllowFrom, read.Entries)

	if AllowListMatches(entries, cmd.UserID, cmd.UserName) {
		return true, true, nil
	}

	if policy == "pairing" {
		pairing, err := h.opts.Pairing.Upsert(ctx, channelName, cmd.UserID, store.PairingMeta{Name: cmd.UserName})
		if err != nil {
			return false, false, fmt.Errorf("upsert pairing request: %w", err)
		}
		// Instructions go out once per pending request; repeats from
		// the same unapproved sender stay silent.
		if pairing.Created {
			slog.Info("pairing request created", "user_id", cmd.UserID, "code", pairing.Code)
			h.respond(req, pairingInstructions(cmd.UserID, pairing.Code))
		}
		return false, false, nil
	}

	slog.Debug("command rejected by DM policy", "user_id", cmd.UserID, "dm_policy", policy)
	h.respond(req, msgNotAuthorized)
	return false, false, nil
}

// AllowListRead distinguishes "read succeeded, empty" from "read
// failed" even though both degrade to an empty list for the decision.
// Keeping the error visible here preserves the ability to alert on
// persistent store failure without changing the decision contract.
type AllowListRead struct {
	Entries []string
	Err     error
}

func (h *Handler) readChannelAllow(ctx context.Context) AllowListRead {
	if h.opts.ChannelAllow == nil {
		return AllowListRead{}
	}
	entries, err := h.opts.ChannelAllow.List(ctx, channelName)
	if err != nil {
		// Degraded dependency: fall back to static-config-only
		// allow-listing rather than blocking the decision.
		slog.Warn("allow-list store read failed, using static config only", "error", err)
		return AllowListRead{Err: err}
	}
	return AllowListRead{Entries: entries}
}

func (h *Handler) lookupChannelInfo(ctx context.Context, cmd Command) *ChannelInfo {
	if h.opts.Directory == nil {
		return nil
	}
	info, err := h.opts.Directory.ChannelInfo(ctx, cmd.ChannelID)
	if err != nil {
		slog.Warn("channel info lookup failed", "channel_id", cmd.ChannelID, "error", err)
		return nil
	}
	return info
}

func (h *Handler) lookupUserInfo(ctx context.Context, userID string) *UserInfo {
	if h.opts.Directory == nil {
		return nil
	}
	user, err := h.opts.Directory.UserInfo(ctx, userID)
	if err != nil {
		slog.Warn("user info lookup failed", "user_id", userID, "error", err)
		return nil
	}
	return user
}

func (h *Handler) respond(req CommandRequest, text string) {
	if req.Respond == nil {
		return
	}
	if err := req.Respond(text); err != nil {
		slog.Warn("failed to send ephemeral response", "command", req.Command.Name, "error", err)
	}
}

// truncatePrompt caps prompt at max bytes without splitting a rune.
func truncatePrompt(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut]
}

func pairingInstructions(userID, code string) string {
	return fmt.Sprintf(
		"OpenClaw: access not configured.\n\nYour Slack user ID: %s\n\nPairing code: %s\n\nAsk the bot owner to approve with:\n  openclaw pairing approve %s",
		userID, code, code,
	)
}
