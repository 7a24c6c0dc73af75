package bot

import (
	"context"
	"errors"
	"time"

	"github.com/natjoub/factory/services/telegrambot/internal/backend"
	"github.com/natjoub/factory/services/telegrambot/internal/session"
)

// skipWord lets a chat pass on the optional registration fields.
const skipWord = "skip"

// handleStep advances the chat's conversation by one answer.
func (b *Bot) handleStep(ctx context.Context, chatID int64, text string) string {
	convo := b.getConvo(chatID)
	if convo == nil {
		return "Nothing in progress. " + helpText
	}

	switch convo.state {
	case stateRegFirstName:
		convo.reg.FirstName = text
		convo.state = stateRegLastName
		return "And your last name?"

	case stateRegLastName:
		convo.reg.LastName = text
		convo.state = stateRegEmail
		return "Your email address?"

	case stateRegEmail:
		convo.reg.Email = text
		convo.state = stateRegPhone
		return "Phone number in +499999999999 form, or \"" + skipWord + "\"?"

	case stateRegPhone:
		if text != skipWord {
			phone := text
			convo.reg.PhoneNumber = &phone
		}
		convo.state = stateRegUsername
		return "Pick a username, or \"" + skipWord + "\"?"

	case stateRegUsername:
		if text != skipWord {
			username := text
			convo.reg.Username = &username
		}
		convo.state = stateRegPassword
		return "Choose a password (min 8 chars, upper, lower, digit, symbol)."

	case stateRegPassword:
		convo.reg.Password = text
		convo.reg.Role = "customer"
		return b.finishRegistration(ctx, chatID, convo)

	case stateRegOTP:
		return b.verifyOTP(ctx, chatID, convo, text)

	case stateLoginIdentifier:
		convo.identifier = text
		convo.state = stateLoginPassword
		return "Password?"

	case stateLoginPassword:
		return b.finishLogin(ctx, chatID, convo, text)
	}

	b.clearConvo(chatID)
	return "Lost the thread, sorry. " + helpText
}

func (b *Bot) finishRegistration(ctx context.Context, chatID int64, convo *conversation) string {
	resp, err := b.Auth.Register(ctx, convo.reg)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "VALIDATION_ERROR" {
			// Let the chat retry the password before giving up on the
			// whole flow.
			if _, ok := apiErr.Details["password"]; ok {
				return errorText(err) + "\nTry another password."
			}
		}
		b.clearConvo(chatID)
		return errorText(err)
	}

	b.storeSession(chatID, resp)
	convo.identifier = convo.reg.Email
	convo.state = stateRegOTP
	b.Logger.Info("chat registered", "chatId", chatID, "userId", resp.User.ID)
	return "Account created and you are logged in. We sent a 6-digit code to verify your email; reply with it, or /cancel to do it later."
}

func (b *Bot) verifyOTP(ctx context.Context, chatID int64, convo *conversation, code string) string {
	if err := b.Auth.VerifyOTP(ctx, convo.identifier, code); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "INVALID_OTP" {
			return "That code is wrong or expired. Try again, or /cancel."
		}
		b.clearConvo(chatID)
		return errorText(err)
	}
	b.clearConvo(chatID)
	return "Email verified, all set."
}

func (b *Bot) finishLogin(ctx context.Context, chatID int64, convo *conversation, password string) string {
	resp, err := b.Auth.Login(ctx, convo.identifier, password)
	if err != nil {
		b.clearConvo(chatID)
		return errorText(err)
	}
	b.clearConvo(chatID)
	b.storeSession(chatID, resp)
	b.Logger.Info("chat logged in", "chatId", chatID, "userId", resp.User.ID)
	return "Logged in as " + resp.User.FirstName + ". Try /orders or /stock."
}

func (b *Bot) storeSession(chatID int64, resp *backend.AuthResponse) {
	b.Sessions.Put(chatID, session.Session{
		UserID:       resp.User.ID,
		Role:         resp.User.Role,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	})
}
