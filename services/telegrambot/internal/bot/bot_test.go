package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natjoub/factory/services/telegrambot/internal/backend"
	"github.com/natjoub/factory/services/telegrambot/internal/session"
)

type fakeSender struct {
	replies []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeSender) last() string {
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

type fakeAuth struct {
	registered  *backend.RegisterRequest
	registerErr error
	loginErr    error
	otp         string
	loggedOut   []string
}

func (f *fakeAuth) Register(_ context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = &req
	return &backend.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User:         backend.User{ID: "u1", FirstName: req.FirstName, Role: req.Role},
	}, nil
}

func (f *fakeAuth) Login(_ context.Context, identifier, _ string) (*backend.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &backend.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User:         backend.User{ID: "u1", FirstName: "Ada", Role: "customer"},
	}, nil
}

func (f *fakeAuth) VerifyOTP(_ context.Context, _, otp string) error {
	if otp != f.otp {
		return &backend.APIError{Code: "INVALID_OTP", Message: "invalid or expired OTP"}
	}
	return nil
}

func (f *fakeAuth) Logout(_ context.Context, accessToken string) error {
	f.loggedOut = append(f.loggedOut, accessToken)
	return nil
}

func (f *fakeAuth) Refresh(_ context.Context, _ string) (*backend.TokenPair, error) {
	return &backend.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

type fakeOrders struct {
	list *backend.OrderList
}

func (f *fakeOrders) ListOrders(_ context.Context, _ string) (*backend.OrderList, error) {
	return f.list, nil
}

type fakeInventory struct {
	items    []backend.Item
	stockErr error
}

func (f *fakeInventory) SearchItems(_ context.Context, _, _ string) ([]backend.Item, error) {
	return f.items, nil
}

func (f *fakeInventory) Stock(_ context.Context, _, _ string) ([]backend.StockLevel, error) {
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return []backend.StockLevel{{Quantity: 40, Reserved: 5}}, nil
}

func newTestBot() (*Bot, *fakeSender, *fakeAuth, *fakeOrders, *fakeInventory) {
	sender := &fakeSender{}
	auth := &fakeAuth{otp: "123456"}
	orders := &fakeOrders{list: &backend.OrderList{}}
	inv := &fakeInventory{}
	b := &Bot{
		TG:        sender,
		Auth:      auth,
		Orders:    orders,
		Inventory: inv,
		Sessions:  session.NewStore(auth),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return b, sender, auth, orders, inv
}

func say(b *Bot, chatID int64, lines ...string) {
	for _, line := range lines {
		b.HandleMessage(context.Background(), chatID, line)
	}
}

func TestRegistrationConversation(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()

	say(b, 1, "/register", "Ada", "Lovelace", "ada@example.com", "+4915112345678", "skip", "Str0ng!Pass")
	require.NotNil(t, auth.registered)
	assert.Equal(t, "Ada", auth.registered.FirstName)
	assert.Equal(t, "ada@example.com", auth.registered.Email)
	assert.Equal(t, "customer", auth.registered.Role)
	require.NotNil(t, auth.registered.PhoneNumber)
	assert.Equal(t, "+4915112345678", *auth.registered.PhoneNumber)
	assert.Nil(t, auth.registered.Username)
	assert.Contains(t, sender.last(), "6-digit code")

	// Tokens were stored before verification.
	token, err := b.Sessions.AccessToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "access", token)

	say(b, 1, "000000")
	assert.Contains(t, sender.last(), "wrong or expired")

	say(b, 1, "123456")
	assert.Contains(t, sender.last(), "verified")
}

func TestRegistration_DuplicateEmailAbortsFlow(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()
	auth.registerErr = &backend.APIError{
		Code:    "USER_ALREADY_EXISTS",
		Message: "user with this email, username, or phone number already exists",
	}

	say(b, 1, "/register", "Ada", "Lovelace", "ada@example.com", "skip", "skip", "Str0ng!Pass")
	assert.Contains(t, sender.last(), "already exists")

	// The flow is over; plain text is no longer a step.
	say(b, 1, "hello")
	assert.Contains(t, sender.last(), "Nothing in progress")
}

func TestRegistration_WeakPasswordAllowsRetry(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()
	auth.registerErr = &backend.APIError{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Details: map[string]string{"password": "must contain upper, lower, digit and symbol"},
	}

	say(b, 1, "/register", "Ada", "Lovelace", "ada@example.com", "skip", "skip", "weak")
	assert.Contains(t, sender.last(), "Try another password")

	auth.registerErr = nil
	say(b, 1, "Str0ng!Pass")
	require.NotNil(t, auth.registered)
	assert.Equal(t, "Str0ng!Pass", auth.registered.Password)
}

func TestLoginLogout(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()

	say(b, 9, "/orders")
	assert.Contains(t, sender.last(), "Log in first")

	say(b, 9, "/login", "ada@example.com", "Str0ng!Pass")
	assert.Contains(t, sender.last(), "Logged in as Ada")

	say(b, 9, "/logout")
	assert.Contains(t, sender.last(), "Logged out")
	assert.Equal(t, []string{"access"}, auth.loggedOut)

	say(b, 9, "/orders")
	assert.Contains(t, sender.last(), "Log in first")
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()
	auth.loginErr = &backend.APIError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email/username/phone or password",
	}

	say(b, 9, "/login", "ada@example.com", "nope")
	assert.Contains(t, sender.last(), "invalid email/username/phone or password")

	_, err := b.Sessions.AccessToken(context.Background(), 9)
	assert.Error(t, err)
}

func TestOrdersCommand(t *testing.T) {
	t.Parallel()

	b, sender, _, orders, _ := newTestBot()
	orders.list = &backend.OrderList{
		Total: 1,
		Orders: []backend.Order{{
			ID:     "0b54bd21-aaaa-bbbb-cccc-000000000000",
			Status: "PENDING",
			Total:  42.97,
			Items:  []backend.OrderItem{{Name: "Gears", Quantity: 3, Subtotal: 32.97}},
		}},
	}

	say(b, 9, "/login", "ada@example.com", "pw", "/orders")
	out := sender.last()
	assert.Contains(t, out, "0b54bd21")
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "3x Gears")
}

func TestStockCommand_CustomerSeesCatalogOnly(t *testing.T) {
	t.Parallel()

	b, sender, _, _, inv := newTestBot()
	inv.items = []backend.Item{{ID: "i1", SKU: "WIDGET-1", Name: "Widget", Price: 9.99}}
	inv.stockErr = &backend.APIError{Code: "INSUFFICIENT_PERMISSIONS", Message: "no"}

	say(b, 9, "/login", "ada@example.com", "pw", "/stock widget")
	out := sender.last()
	assert.Contains(t, out, "Widget [WIDGET-1]")
	assert.NotContains(t, out, "in stock")
}

func TestStockCommand_StaffSeesLevels(t *testing.T) {
	t.Parallel()

	b, sender, _, _, inv := newTestBot()
	inv.items = []backend.Item{{ID: "i1", SKU: "WIDGET-1", Name: "Widget", Price: 9.99}}

	say(b, 9, "/login", "boss@example.com", "pw", "/stock widget")
	out := sender.last()
	assert.Contains(t, out, "in stock: 40")
	assert.Contains(t, out, "reserved: 5")
}

func TestCancelAbandonsFlow(t *testing.T) {
	t.Parallel()

	b, sender, auth, _, _ := newTestBot()

	say(b, 9, "/register", "Ada", "/cancel", "Lovelace")
	assert.Nil(t, auth.registered)
	assert.Contains(t, sender.last(), "Nothing in progress")
}

func TestSessionSurvivesTokenRotation(t *testing.T) {
	t.Parallel()

	b, _, _, _, _ := newTestBot()
	b.Sessions.Put(9, session.Session{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now(), // forces a refresh
	})

	token, err := b.Sessions.AccessToken(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "access", token)
}
