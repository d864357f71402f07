package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"maunium.net/go/mautrix"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
)

// Config configures the chat invitation client
type Config struct {
	HomeserverURL string
	Username      string
	Password      string
	// IdentityServer is a host name or a base URL; bare hosts are reached over https
	IdentityServer string
	Timeout        time.Duration
}

// Client sends email invitations through the homeserver's third-party invite flow.
// It never retries; a failed invite is reported in the result.
type Client struct {
	cfg Config

	mx       *mautrix.Client
	identity *mautrix.Client
	idServer string

	// tokens caches identity server access tokens per identity server
	tokens   *expirable.LRU[string, string]
	validate *validator.Validate

	loginMu sync.Mutex
}

type openIDToken struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	MatrixServerName string `json:"matrix_server_name"`
	ExpiresIn        int    `json:"expires_in"`
}

type identityAccount struct {
	Token string `json:"token"`
}

type invite3PID struct {
	IDServer      string `json:"id_server"`
	IDAccessToken string `json:"id_access_token"`
	Medium        string `json:"medium"`
	Address       string `json:"address"`
}

// NewClient creates a client. It does not log in; call Login or let the first invite do it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.HomeserverURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New(ErrMsgConfigIncomplete)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	mx, err := mautrix.NewClient(cfg.HomeserverURL, "", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateClient, err)
	}
	mx.Client = httpClient
	mx.DefaultHTTPRetries = 0

	idBase, idServer := identityEndpoint(cfg.IdentityServer)
	identity, err := mautrix.NewClient(idBase, "", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateClient, err)
	}
	identity.Client = httpClient
	identity.DefaultHTTPRetries = 0

	return &Client{
		cfg:      cfg,
		mx:       mx,
		identity: identity,
		idServer: idServer,
		tokens:   expirable.NewLRU[string, string](tokenCacheSize, nil, defaultTokenTTL-tokenExpiryMargin),
		validate: validator.New(),
	}, nil
}

// identityEndpoint returns the base URL to call and the server name to put in invites
func identityEndpoint(server string) (base, name string) {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if u, err := url.Parse(server); err == nil && u.Scheme != "" && u.Host != "" {
		return server, u.Host
	}
	return "https://" + server, server
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// Login authenticates the bot account with its password
func (c *Client) Login(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	return c.login(ctx)
}

func (c *Client) ensureLoggedIn(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.mx.AccessToken != "" {
		return nil
	}
	return c.login(ctx)
}

// login must be called with loginMu held
func (c *Client) login(ctx context.Context) (err error) {
	defer metrics.ObserveExternalCall(metrics.ServiceChat, opLogin, time.Now(), &err)
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.mx.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: c.cfg.Username,
		},
		Password:         c.cfg.Password,
		StoreCredentials: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrChatUnavailable, ErrMsgLoginFailed, err)
	}

	logger.FromContext(ctx).Info(LogMsgLoggedIn, "user_id", resp.UserID, "device_id", resp.DeviceID)
	return nil
}

// dropSession forgets credentials the homeserver no longer accepts
func (c *Client) dropSession(ctx context.Context, err error) {
	if !errors.Is(err, mautrix.MUnknownToken) {
		return
	}
	logger.FromContext(ctx).Warn(LogMsgSessionExpired)
	c.loginMu.Lock()
	c.mx.AccessToken = ""
	c.loginMu.Unlock()
	c.tokens.Purge()
}

// Close logs the bot out
func (c *Client) Close(ctx context.Context) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.mx.AccessToken == "" {
		return
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	if _, err := c.mx.Logout(ctx); err != nil {
		logger.FromContext(ctx).Warn(LogMsgLogoutFailed, "error", err)
		return
	}
	c.mx.AccessToken = ""
	logger.FromContext(ctx).Info(LogMsgLoggedOut)
}

// identityToken returns a cached identity server token or registers for a new one
func (c *Client) identityToken(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.Get(c.idServer); ok {
		return tok, nil
	}

	oid, err := c.requestOpenIDToken(ctx)
	if err != nil {
		return "", err
	}

	tok, err := c.registerIdentity(ctx, oid)
	if err != nil {
		return "", err
	}

	c.tokens.Add(c.idServer, tok)
	return tok, nil
}

func (c *Client) requestOpenIDToken(ctx context.Context) (tok *openIDToken, err error) {
	defer metrics.ObserveExternalCall(metrics.ServiceChat, opOpenIDToken, time.Now(), &err)
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var resp openIDToken
	path := c.mx.BuildClientURL("v3", "user", c.mx.UserID.String(), "openid", "request_token")
	if _, err := c.mx.MakeRequest(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		c.dropSession(ctx, err)
		return nil, fmt.Errorf("%s: %w", ErrMsgOpenIDFailed, err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New(ErrMsgOpenIDFailed)
	}
	return &resp, nil
}

func (c *Client) registerIdentity(ctx context.Context, oid *openIDToken) (token string, err error) {
	defer metrics.ObserveExternalCall(metrics.ServiceChat, opIdentityAccount, time.Now(), &err)
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var resp identityAccount
	if _, err := c.identity.MakeRequest(ctx, http.MethodPost, c.identity.HomeserverURL.String()+identityRegister, oid, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgIdentityFailed, err)
	}
	if resp.Token == "" {
		return "", errors.New(ErrMsgNoIdentityToken)
	}
	logger.FromContext(ctx).Debug(LogMsgIdentityTokenOK, "identity_server", c.idServer)
	return resp.Token, nil
}

// InviteByEmail sends one email invite to roomID.
// An "already in room" rejection counts as already_member; every other failure is reported as failed.
func (c *Client) InviteByEmail(ctx context.Context, roomID, email string) domain.InviteResult {
	result := domain.InviteResult{RoomID: roomID}
	log := logger.FromContext(ctx).With(logger.KeyRoomID, roomID)

	fail := func(err error) domain.InviteResult {
		result.Status = domain.InviteFailed
		result.Error = err.Error()
		log.Warn(LogMsgInviteFailed, "error", err)
		metrics.RecordInvite(string(result.Status))
		return result
	}

	if strings.TrimSpace(roomID) == "" {
		return fail(errors.New(ErrMsgRoomRequired))
	}
	if err := c.validate.Var(email, "required,email"); err != nil {
		return fail(errors.New(ErrMsgInvalidEmail))
	}

	if err := c.ensureLoggedIn(ctx); err != nil {
		return fail(err)
	}

	idToken, err := c.identityToken(ctx)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", domain.ErrChatUnavailable, err))
	}

	err = c.invite(ctx, roomID, idToken, email)
	switch {
	case err == nil:
		result.Status = domain.InviteSent
		log.Info(LogMsgInviteSent)
	case isAlreadyMember(err):
		result.Status = domain.InviteAlreadyMember
		log.Info(LogMsgAlreadyMember)
	default:
		c.dropSession(ctx, err)
		return fail(err)
	}

	metrics.RecordInvite(string(result.Status))
	return result
}

func (c *Client) invite(ctx context.Context, roomID, idToken, email string) (err error) {
	start := time.Now()
	defer func() {
		// an already-member rejection is a normal answer, not a failed call
		observed := err
		if isAlreadyMember(err) {
			observed = nil
		}
		metrics.ObserveExternalCall(metrics.ServiceChat, opInvite, start, &observed)
	}()

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	path := c.mx.BuildClientURL("v3", "rooms", roomID, "invite")
	_, err = c.mx.MakeRequest(ctx, http.MethodPost, path, invite3PID{
		IDServer:      c.idServer,
		IDAccessToken: idToken,
		Medium:        mediumEmail,
		Address:       email,
	}, nil)
	return err
}

// isAlreadyMember matches the homeserver's M_FORBIDDEN "already in the room" rejection
func isAlreadyMember(err error) bool {
	if err == nil || !errors.Is(err, mautrix.MForbidden) {
		return false
	}
	var httpErr mautrix.HTTPError
	if errors.As(err, &httpErr) && httpErr.RespError != nil {
		return strings.Contains(strings.ToLower(httpErr.RespError.Err), alreadyMemberHint)
	}
	return strings.Contains(strings.ToLower(err.Error()), alreadyMemberHint)
}
