package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBase = "https://slack.com/api"

	// Directory lookups are cached briefly; topic/purpose edits and
	// renames are rare relative to command volume.
	directoryCacheTTL = 5 * time.Minute
)

// Client is a minimal Slack Web API client covering the calls the
// gateway needs: identity, conversation/user metadata, Socket Mode
// connection URLs, and ephemeral responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	appToken   string

	channelCache sync.Map // channelID -> *directoryEntry[ChannelInfo]
	userCache    sync.Map // userID -> *directoryEntry[UserInfo]
}

type directoryEntry struct {
	value     any
	expiresAt time.Time
}

// NewClient creates a Client. botToken authorizes Web API calls;
// appToken authorizes apps.connection.open.
func NewClient(botToken, appToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultAPIBase,
		botToken:   botToken,
		appToken:   appToken,
	}
}

type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`

	URL string `json:"url"` // apps.connection.open

	UserID string `json:"user_id"` // auth.test
	BotID  string `json:"bot_id"`  // auth.test
	TeamID string `json:"team_id"` // auth.test

	Channel *struct {
		Name      string `json:"name"`
		IsChannel bool   `json:"is_channel"`
		IsGroup   bool   `json:"is_group"`
		IsIM      bool   `json:"is_im"`
		IsMpim    bool   `json:"is_mpim"`
		Topic     struct {
			Value string `json:"value"`
		} `json:"topic"`
		Purpose struct {
			Value string `json:"value"`
		} `json:"purpose"`
	} `json:"channel"` // conversations.info

	User *struct {
		Name    string `json:"name"`
		Profile struct {
			DisplayName string `json:"display_name"`
			RealName    string `json:"real_name"`
		} `json:"profile"`
	} `json:"user"` // users.info
}

func (c *Client) call(ctx context.Context, token, method string, params url.Values) (*apiEnvelope, error) {
	body := strings.NewReader(params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", method, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%s failed: %s", method, env.Error)
	}
	return &env, nil
}

// Identity is the bot's own identity, used for the self-message check
// and for route resolution.
type Identity struct {
	UserID    string
	AccountID string
	TeamID    string
}

// AuthTest resolves the bot's identity from the bot token.
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	env, err := c.call(ctx, c.botToken, "auth.test", url.Values{})
	if err != nil {
		return Identity{}, err
	}
	accountID := env.BotID
	if accountID == "" {
		accountID = env.UserID
	}
	return Identity{UserID: env.UserID, AccountID: accountID, TeamID: env.TeamID}, nil
}

// ConnectionOpen requests a fresh Socket Mode websocket URL.
func (c *Client) ConnectionOpen(ctx context.Context) (string, error) {
	env, err := c.call(ctx, c.appToken, "apps.connection.open", url.Values{})
	if err != nil {
		return "", err
	}
	if env.URL == "" {
		return "", fmt.Errorf("apps.connection.open returned no url")
	}
	return env.URL, nil
}

// ChannelInfo implements Directory via conversations.info with a TTL
// cache.
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	if cached, ok := c.channelCache.Load(channelID); ok {
		entry := cached.(*directoryEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry.value.(*ChannelInfo), nil
		}
		c.channelCache.Delete(channelID)
	}

	env, err := c.call(ctx, c.botToken, "conversations.info", url.Values{"channel": {channelID}})
	if err != nil {
		return nil, err
	}
	if env.Channel == nil {
		return nil, nil
	}

	info := &ChannelInfo{
		Name:    env.Channel.Name,
		Type:    "channel",
		Topic:   env.Channel.Topic.Value,
		Purpose: env.Channel.Purpose.Value,
	}
	switch {
	case env.Channel.IsIM:
		info.Type = "im"
	case env.Channel.IsMpim:
		info.Type = "mpim"
	case env.Channel.IsGroup:
		info.Type = "group"
	}

	c.channelCache.Store(channelID, &directoryEntry{value: info, expiresAt: time.Now().Add(directoryCacheTTL)})
	return info, nil
}

// UserInfo implements Directory via users.info with a TTL cache.
func (c *Client) UserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	if cached, ok := c.userCache.Load(userID); ok {
		entry := cached.(*directoryEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry.value.(*UserInfo), nil
		}
		c.userCache.Delete(userID)
	}

	env, err := c.call(ctx, c.botToken, "users.info", url.Values{"user": {userID}})
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, nil
	}

	name := env.User.Profile.DisplayName
	if name == "" {
		name = env.User.Profile.RealName
	}
	if name == "" {
		name = env.User.Name
	}
	info := &UserInfo{Name: name}

	c.userCache.Store(userID, &directoryEntry{value: info, expiresAt: time.Now().Add(directoryCacheTTL)})
	return info, nil
}

// RespondEphemeral posts an ephemeral text response to a slash
// command's response_url. Responses through the URL are visible only to
// the invoking user.
func (c *Client) RespondEphemeral(ctx context.Context, responseURL, text string) error {
	payload, err := json.Marshal(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
	if err != nil {
		return fmt.Errorf("marshal ephemeral response: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build ephemeral response request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post ephemeral response: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ephemeral response rejected: status %d", resp.StatusCode)
	}
	return nil
}
