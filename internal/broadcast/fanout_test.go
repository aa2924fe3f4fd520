package broadcast_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgbot "github.com/go-telegram/bot"

	"github.com/frappeash/lookupbot/internal/broadcast"
	"github.com/frappeash/lookupbot/internal/telegram"
)

type fakeCopier struct {
	delivered []int64
	errs      map[int64]error
}

func (c *fakeCopier) CopyMessage(_ context.Context, toChatID int64, _ telegram.MessageRef) error {
	if err, ok := c.errs[toChatID]; ok {
		return err
	}
	c.delivered = append(c.delivered, toChatID)
	return nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	src := telegram.MessageRef{ChatID: 9000, MessageID: 7}

	testCases := []struct {
		name       string
		recipients []int64
		errs       map[int64]error
		want       broadcast.Result
	}{
		{
			name:       "all deliveries succeed",
			recipients: []int64{1, 2, 3},
			want:       broadcast.Result{Total: 3, Sent: 3, Failed: 0},
		},
		{
			name:       "permission failure is counted and isolated",
			recipients: []int64{101, 102, 103, -201, -202},
			errs: map[int64]error{
				102: fmt.Errorf("copyMessage: %w", tgbot.ErrorForbidden),
			},
			want: broadcast.Result{Total: 5, Sent: 4, Failed: 1},
		},
		{
			name:       "other failures also counted without aborting",
			recipients: []int64{1, 2, 3, 4},
			errs: map[int64]error{
				1: errors.New("timeout"),
				3: fmt.Errorf("copyMessage: %w", tgbot.ErrorForbidden),
			},
			want: broadcast.Result{Total: 4, Sent: 2, Failed: 2},
		},
		{
			name:       "empty recipient set",
			recipients: nil,
			want:       broadcast.Result{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			copier := &fakeCopier{errs: tc.errs}
			fanout := broadcast.NewFanout(copier, nil)

			got := fanout.Run(context.Background(), src, tc.recipients)

			if got != tc.want {
				t.Errorf("result = %+v, want %+v", got, tc.want)
			}
			if got.Sent+got.Failed != got.Total {
				t.Errorf("sent %d + failed %d != total %d", got.Sent, got.Failed, got.Total)
			}
			if len(copier.delivered) != tc.want.Sent {
				t.Errorf("delivered to %d chats, want %d", len(copier.delivered), tc.want.Sent)
			}
		})
	}
}
