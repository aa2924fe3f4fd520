package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frappeash/lookupbot/internal/auth"
	"github.com/frappeash/lookupbot/internal/membership"
	"github.com/frappeash/lookupbot/internal/telegram"
)

const ownerID int64 = 9000

type fakeRegistry struct {
	users  []int64
	groups []int64
}

func (r *fakeRegistry) UpsertUser(_ context.Context, userID int64) error {
	r.users = append(r.users, userID)
	return nil
}

func (r *fakeRegistry) UpsertGroup(_ context.Context, chatID int64) error {
	r.groups = append(r.groups, chatID)
	return nil
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons []telegram.LinkButton
}

type fakeMessenger struct {
	sent     []sentMessage
	left     []int64
	leaveErr error
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, opts ...telegram.SendOption) (telegram.MessageRef, error) {
	msg := sentMessage{chatID: chatID, text: text, buttons: telegram.ButtonsOf(opts)}
	m.sent = append(m.sent, msg)
	return telegram.MessageRef{ChatID: chatID, MessageID: len(m.sent)}, nil
}

func (m *fakeMessenger) LeaveChat(_ context.Context, chatID int64) error {
	m.left = append(m.left, chatID)
	return m.leaveErr
}

func TestOpenPolicy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		chat        auth.ChatContext
		wantAllowed bool
		wantReason  auth.Reason
		wantUsers   int
		wantGroups  int
		wantNotices int
	}{
		{
			name:        "owner in private chat",
			chat:        auth.ChatContext{ChatID: ownerID, UserID: ownerID, ChatType: auth.ChatPrivate},
			wantAllowed: true,
			wantReason:  auth.ReasonOwner,
			wantUsers:   1,
		},
		{
			name:        "owner in group registers group",
			chat:        auth.ChatContext{ChatID: -500, UserID: ownerID, ChatType: auth.ChatSupergroup},
			wantAllowed: true,
			wantReason:  auth.ReasonOwner,
			wantGroups:  1,
		},
		{
			name:        "non-owner private chat denied with notice and no writes",
			chat:        auth.ChatContext{ChatID: 123, UserID: 123, ChatType: auth.ChatPrivate},
			wantAllowed: false,
			wantReason:  auth.ReasonDeniedPrivate,
			wantNotices: 1,
		},
		{
			name:        "group allowed and registers group and user",
			chat:        auth.ChatContext{ChatID: -600, UserID: 123, ChatType: auth.ChatGroup},
			wantAllowed: true,
			wantReason:  auth.ReasonAnyGroup,
			wantUsers:   1,
			wantGroups:  1,
		},
		{
			name:        "supergroup allowed and registers group and user",
			chat:        auth.ChatContext{ChatID: -601, UserID: 124, ChatType: auth.ChatSupergroup},
			wantAllowed: true,
			wantReason:  auth.ReasonAnyGroup,
			wantUsers:   1,
			wantGroups:  1,
		},
		{
			name:        "channel denied silently",
			chat:        auth.ChatContext{ChatID: -700, UserID: 123, ChatType: auth.ChatChannel},
			wantAllowed: false,
			wantReason:  auth.ReasonDeniedGroup,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			registry := &fakeRegistry{}
			messenger := &fakeMessenger{}
			policy := auth.NewOpenPolicy(ownerID, registry, messenger, "denied", nil)

			decision := policy.Evaluate(context.Background(), tc.chat)

			if decision.Allowed != tc.wantAllowed || decision.Reason != tc.wantReason {
				t.Errorf("decision = %+v, want allowed=%v reason=%s", decision, tc.wantAllowed, tc.wantReason)
			}
			if len(registry.users) != tc.wantUsers {
				t.Errorf("registered %d users, want %d", len(registry.users), tc.wantUsers)
			}
			if len(registry.groups) != tc.wantGroups {
				t.Errorf("registered %d groups, want %d", len(registry.groups), tc.wantGroups)
			}
			if len(messenger.sent) != tc.wantNotices {
				t.Errorf("sent %d notices, want %d", len(messenger.sent), tc.wantNotices)
			}
		})
	}
}

func TestAllowlistPolicy(t *testing.T) {
	t.Parallel()

	officialGroups := []int64{-100}

	t.Run("official group allowed", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewAllowlistPolicy(ownerID, officialGroups, registry, messenger, "use me here: %s", "https://t.me/official", nil)

		decision := policy.Evaluate(context.Background(), auth.ChatContext{ChatID: -100, UserID: 42, ChatType: auth.ChatGroup})

		if !decision.Allowed || decision.Reason != auth.ReasonOfficialGroup {
			t.Errorf("decision = %+v, want official group allow", decision)
		}
		if len(registry.groups) != 1 || len(registry.users) != 1 {
			t.Errorf("expected group and user registration, got groups=%v users=%v", registry.groups, registry.users)
		}
	})

	t.Run("unauthorized group notified and left", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewAllowlistPolicy(ownerID, officialGroups, registry, messenger, "use me here: %s", "https://t.me/official", nil)

		decision := policy.Evaluate(context.Background(), auth.ChatContext{ChatID: -999, UserID: 42, ChatType: auth.ChatGroup})

		if decision.Allowed || decision.Reason != auth.ReasonDeniedGroup {
			t.Errorf("decision = %+v, want group denial", decision)
		}
		if len(registry.users)+len(registry.groups) != 0 {
			t.Error("denial path must not write to the store")
		}
		if len(messenger.sent) != 1 {
			t.Fatalf("expected one denial notice, got %d", len(messenger.sent))
		}
		if len(messenger.left) != 1 || messenger.left[0] != -999 {
			t.Errorf("expected leave of chat -999, got %v", messenger.left)
		}
	})

	t.Run("failure to leave is swallowed", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{leaveErr: errors.New("not enough rights")}
		policy := auth.NewAllowlistPolicy(ownerID, officialGroups, registry, messenger, "use me here: %s", "https://t.me/official", nil)

		decision := policy.Evaluate(context.Background(), auth.ChatContext{ChatID: -999, UserID: 42, ChatType: auth.ChatGroup})

		if decision.Allowed {
			t.Error("expected denial despite leave failure")
		}
	})

	t.Run("private chat allowed and registers user", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewAllowlistPolicy(ownerID, officialGroups, registry, messenger, "use me here: %s", "https://t.me/official", nil)

		decision := policy.Evaluate(context.Background(), auth.ChatContext{ChatID: 42, UserID: 42, ChatType: auth.ChatPrivate})

		if !decision.Allowed || decision.Reason != auth.ReasonPrivateUser {
			t.Errorf("decision = %+v, want private user allow", decision)
		}
		if len(registry.users) != 1 {
			t.Errorf("expected user registration, got %v", registry.users)
		}
	})
}

type gateAPI struct {
	statuses map[string]membership.Status
}

func (g *gateAPI) ChatMemberStatus(_ context.Context, channel string, _ int64) (membership.Status, error) {
	return g.statuses[channel], nil
}

func (g *gateAPI) ChatInviteLink(_ context.Context, _ string) (string, error) {
	return "", errors.New("unused")
}

func TestGateMembership(t *testing.T) {
	t.Parallel()

	channels := []string{"@one", "@two"}

	t.Run("missing subscription converts allow to deny with buttons", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewOpenPolicy(ownerID, registry, messenger, "denied", nil)
		checker := membership.NewChecker(&gateAPI{statuses: map[string]membership.Status{
			"@one": membership.StatusLeft,
			"@two": membership.StatusKicked,
		}}, channels, true, nil)
		gate := auth.NewGate(policy, checker, messenger, ownerID, "join first", nil)

		decision := gate.Check(context.Background(), auth.ChatContext{ChatID: -600, UserID: 42, ChatType: auth.ChatGroup})

		if decision.Allowed || decision.Reason != auth.ReasonMissingSubscription {
			t.Errorf("decision = %+v, want missing subscription denial", decision)
		}
		if len(messenger.sent) != 1 {
			t.Fatalf("expected one denial message, got %d", len(messenger.sent))
		}
		buttons := messenger.sent[0].buttons
		if len(buttons) != 2 {
			t.Fatalf("expected 2 join buttons, got %d", len(buttons))
		}
		if buttons[0].Label != "Join Channel 1" || buttons[1].Label != "Join Channel 2" {
			t.Errorf("unexpected button labels: %q, %q", buttons[0].Label, buttons[1].Label)
		}
	})

	t.Run("single missing channel uses unnumbered label", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewOpenPolicy(ownerID, registry, messenger, "denied", nil)
		checker := membership.NewChecker(&gateAPI{statuses: map[string]membership.Status{
			"@one": membership.StatusLeft,
			"@two": membership.StatusMember,
		}}, channels, true, nil)
		gate := auth.NewGate(policy, checker, messenger, ownerID, "join first", nil)

		gate.Check(context.Background(), auth.ChatContext{ChatID: -600, UserID: 42, ChatType: auth.ChatGroup})

		if len(messenger.sent) != 1 || len(messenger.sent[0].buttons) != 1 {
			t.Fatalf("expected one message with one button, got %+v", messenger.sent)
		}
		if got := messenger.sent[0].buttons[0].Label; got != "Join Channel" {
			t.Errorf("button label = %q, want %q", got, "Join Channel")
		}
	})

	t.Run("owner bypasses membership check", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewOpenPolicy(ownerID, registry, messenger, "denied", nil)
		checker := membership.NewChecker(&gateAPI{statuses: map[string]membership.Status{
			"@one": membership.StatusLeft,
			"@two": membership.StatusLeft,
		}}, channels, true, nil)
		gate := auth.NewGate(policy, checker, messenger, ownerID, "join first", nil)

		decision := gate.Check(context.Background(), auth.ChatContext{ChatID: ownerID, UserID: ownerID, ChatType: auth.ChatPrivate})

		if !decision.Allowed || decision.Reason != auth.ReasonOwner {
			t.Errorf("decision = %+v, want owner allow", decision)
		}
	})

	t.Run("satisfied subscription keeps allowance", func(t *testing.T) {
		t.Parallel()

		registry := &fakeRegistry{}
		messenger := &fakeMessenger{}
		policy := auth.NewOpenPolicy(ownerID, registry, messenger, "denied", nil)
		checker := membership.NewChecker(&gateAPI{statuses: map[string]membership.Status{
			"@one": membership.StatusMember,
			"@two": membership.StatusMember,
		}}, channels, true, nil)
		gate := auth.NewGate(policy, checker, messenger, ownerID, "join first", nil)

		decision := gate.Check(context.Background(), auth.ChatContext{ChatID: -600, UserID: 42, ChatType: auth.ChatGroup})

		if !decision.Allowed || decision.Reason != auth.ReasonAnyGroup {
			t.Errorf("decision = %+v, want group allow", decision)
		}
	})
}
