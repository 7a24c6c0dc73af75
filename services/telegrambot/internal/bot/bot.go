package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natjoub/factory/services/telegrambot/internal/backend"
	"github.com/natjoub/factory/services/telegrambot/internal/session"
	"github.com/natjoub/factory/services/telegrambot/internal/telegram"
)

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Poller interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

type AuthAPI interface {
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error)
	Login(ctx context.Context, identifier, password string) (*backend.AuthResponse, error)
	VerifyOTP(ctx context.Context, identifier, otp string) error
	Logout(ctx context.Context, accessToken string) error
}

type OrderAPI interface {
	ListOrders(ctx context.Context, accessToken string) (*backend.OrderList, error)
}

type InventoryAPI interface {
	SearchItems(ctx context.Context, accessToken, query string) ([]backend.Item, error)
	Stock(ctx context.Context, accessToken, itemID string) ([]backend.StockLevel, error)
}

type Bot struct {
	TG        Sender
	Auth      AuthAPI
	Orders    OrderAPI
	Inventory InventoryAPI
	Sessions  *session.Store
	Logger    *slog.Logger

	mu     sync.Mutex
	convos map[int64]*conversation

	PollTimeout time.Duration
}

const (
	stateRegFirstName = "reg:first_name"
	stateRegLastName  = "reg:last_name"
	stateRegEmail     = "reg:email"
	stateRegPhone     = "reg:phone"
	stateRegUsername  = "reg:username"
	stateRegPassword  = "reg:password"
	stateRegOTP       = "reg:otp"

	stateLoginIdentifier = "login:identifier"
	stateLoginPassword   = "login:password"
)

type conversation struct {
	state      string
	reg        backend.RegisterRequest
	identifier string
}

const helpText = `Commands:
/register - create an account
/login - sign in
/logout - sign out
/orders - your recent orders
/stock <name or sku> - look up items and stock
/cancel - abandon the current flow`

// Run is the long-poll loop. It returns when ctx is cancelled; poll
// errors are logged and retried.
func (b *Bot) Run(ctx context.Context, poller Poller) error {
	timeout := b.PollTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var offset int64
	for {
		updates, err := poller.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.Logger.Error("poll failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.HandleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)

	var reply string
	if strings.HasPrefix(text, "/") {
		reply = b.handleCommand(ctx, chatID, text)
	} else {
		reply = b.handleStep(ctx, chatID, text)
	}
	if reply == "" {
		return
	}
	if err := b.TG.SendMessage(ctx, chatID, reply); err != nil {
		b.Logger.Error("send failed", "chatId", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) string {
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	// Any command abandons an in-flight conversation.
	b.clearConvo(chatID)

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/cancel":
		return "Cancelled."
	case "/register":
		b.setConvo(chatID, &conversation{state: stateRegFirstName})
		return "Let's create your account. What is your first name?"
	case "/login":
		b.setConvo(chatID, &conversation{state: stateLoginIdentifier})
		return "Your email, username or phone number?"
	case "/logout":
		return b.cmdLogout(ctx, chatID)
	case "/orders":
		return b.cmdOrders(ctx, chatID)
	case "/stock":
		return b.cmdStock(ctx, chatID, arg)
	default:
		return "Unknown command. " + helpText
	}
}

func (b *Bot) cmdLogout(ctx context.Context, chatID int64) string {
	token, err := b.Sessions.AccessToken(ctx, chatID)
	if err != nil {
		return "You are not logged in."
	}
	if err := b.Auth.Logout(ctx, token); err != nil {
		b.Logger.Warn("logout failed", "chatId", chatID, "error", err)
	}
	b.Sessions.Delete(chatID)
	return "Logged out."
}

func (b *Bot) cmdOrders(ctx context.Context, chatID int64) string {
	token, err := b.Sessions.AccessToken(ctx, chatID)
	if err != nil {
		return "Log in first with /login."
	}
	list, err := b.Orders.ListOrders(ctx, token)
	if err != nil {
		return errorText(err)
	}
	if len(list.Orders) == 0 {
		return "You have no orders yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your last %d order(s):\n", len(list.Orders))
	for _, o := range list.Orders {
		fmt.Fprintf(&sb, "\n%s | %s | %.2f\n", shortID(o.ID), o.Status, o.Total)
		for _, it := range o.Items {
			fmt.Fprintf(&sb, "  %dx %s (%.2f)\n", it.Quantity, it.Name, it.Subtotal)
		}
	}
	return sb.String()
}

func (b *Bot) cmdStock(ctx context.Context, chatID int64, query string) string {
	if query == "" {
		return "Usage: /stock <name or sku>"
	}
	token, err := b.Sessions.AccessToken(ctx, chatID)
	if err != nil {
		return "Log in first with /login."
	}

	items, err := b.Inventory.SearchItems(ctx, token, query)
	if err != nil {
		return errorText(err)
	}
	if len(items) == 0 {
		return "Nothing matches \"" + query + "\"."
	}
	if len(items) > 3 {
		items = items[:3]
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%s [%s] | %.2f\n", item.Name, item.SKU, item.Price)
		levels, err := b.Inventory.Stock(ctx, token, item.ID)
		if err != nil {
			// Customers are not allowed to see stock levels; the
			// catalog line above is still useful on its own.
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) && apiErr.Code == "INSUFFICIENT_PERMISSIONS" {
				continue
			}
			return errorText(err)
		}
		total, reserved := 0, 0
		for _, l := range levels {
			total += l.Quantity
			reserved += l.Reserved
		}
		fmt.Fprintf(&sb, "  in stock: %d (reserved: %d)\n", total, reserved)
	}
	return sb.String()
}

func (b *Bot) setConvo(chatID int64, c *conversation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.convos == nil {
		b.convos = make(map[int64]*conversation)
	}
	b.convos[chatID] = c
}

func (b *Bot) getConvo(chatID int64) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.convos[chatID]
}

func (b *Bot) clearConvo(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.convos, chatID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// errorText turns a backend failure into something a person can read.
func errorText(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Details) > 0 {
			fields := make([]string, 0, len(apiErr.Details))
			for f, msg := range apiErr.Details {
				fields = append(fields, f+": "+msg)
			}
			sort.Strings(fields)
			return "That didn't work: " + strings.Join(fields, "; ")
		}
		return apiErr.Message
	}
	return "Something went wrong, please try again later."
}
