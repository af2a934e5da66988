package bot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/bot"
)

func newTestPhone(t *testing.T) bot.Phone {
	p, err := bot.NewPhone("+5511999990000")
	require.NoError(t, err)
	return p
}

func TestNewPhone(t *testing.T) {
	t.Run("accepts digits with leading plus", func(t *testing.T) {
		p, err := bot.NewPhone("+5511999990000")
		require.NoError(t, err)
		assert.Equal(t, "5511999990000", p.String())
	})

	t.Run("rejects too-short numbers", func(t *testing.T) {
		_, err := bot.NewPhone("12345")
		assert.ErrorIs(t, err, bot.ErrInvalidPhone)
	})

	t.Run("rejects non-digit characters", func(t *testing.T) {
		_, err := bot.NewPhone("+1-555-000-0000")
		assert.ErrorIs(t, err, bot.ErrInvalidPhone)
	})
}

func TestIDFromString(t *testing.T) {
	t.Run("rejects empty id", func(t *testing.T) {
		_, err := bot.IDFromString("")
		assert.ErrorIs(t, err, bot.ErrEmptyBotID)
	})

	t.Run("rejects non-uuid id", func(t *testing.T) {
		_, err := bot.IDFromString("not-a-uuid")
		assert.ErrorIs(t, err, bot.ErrInvalidBotID)
	})

	t.Run("accepts a freshly minted id", func(t *testing.T) {
		id := bot.NewID()
		parsed, err := bot.IDFromString(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equals(parsed))
	})
}

func TestBot_NewBotDefaults(t *testing.T) {
	b := bot.NewBot("acme-bot", newTestPhone(t), []byte("creds"), "acme", false, bot.Features{})

	assert.Equal(t, bot.StatusOffline, b.Status())
	assert.Equal(t, bot.ApprovalPending, b.ApprovalStatus())
	assert.False(t, b.IsApproved())
	assert.ErrorIs(t, b.CanStart(), bot.ErrNotApproved)
}

func TestBot_ApproveRevokeReject(t *testing.T) {
	b := bot.NewBot("acme-bot", newTestPhone(t), []byte("creds"), "acme", false, bot.Features{})

	t.Run("approve rejects out-of-range durations", func(t *testing.T) {
		assert.Error(t, b.Approve(0))
		assert.Error(t, b.Approve(13))
	})

	t.Run("approve grants a fixed-duration window", func(t *testing.T) {
		require.NoError(t, b.Approve(6))
		assert.True(t, b.IsApproved())
		assert.NoError(t, b.CanStart())

		exp, ok := b.ExpiresAt()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().AddDate(0, 6, 0), exp, time.Minute)
	})

	t.Run("revoke returns the bot to pending and clears the window", func(t *testing.T) {
		b.Revoke()
		assert.Equal(t, bot.ApprovalPending, b.ApprovalStatus())
		assert.Equal(t, bot.StatusOffline, b.Status())
		_, ok := b.ExpiresAt()
		assert.False(t, ok)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		b.Reject()
		assert.Equal(t, bot.ApprovalRejected, b.ApprovalStatus())
		assert.ErrorIs(t, b.CanStart(), bot.ErrRejected)
	})
}

func TestBot_Expire(t *testing.T) {
	b := bot.NewBot("acme-bot", newTestPhone(t), []byte("creds"), "acme", false, bot.Features{})
	require.NoError(t, b.Approve(1))

	b.Expire()

	assert.Equal(t, bot.ApprovalDormant, b.ApprovalStatus())
	assert.ErrorIs(t, b.CanStart(), bot.ErrDormant)
}

func TestBot_IsExpired(t *testing.T) {
	past := time.Now().AddDate(0, -2, 0)
	b := bot.Restore(
		bot.NewID(), "acme-bot", newTestPhone(t), nil, "acme", false,
		bot.StatusOffline, bot.ApprovalApproved, &past, 1,
		bot.Features{}, 0, 0, past, past,
	)

	assert.True(t, b.IsExpired(time.Now()))
}

func TestBot_Validate(t *testing.T) {
	t.Run("requires a name", func(t *testing.T) {
		b := bot.NewBot("", newTestPhone(t), nil, "acme", false, bot.Features{})
		assert.Error(t, b.Validate())
	})

	t.Run("requires a tenant", func(t *testing.T) {
		b := bot.NewBot("acme-bot", newTestPhone(t), nil, "", false, bot.Features{})
		assert.Error(t, b.Validate())
	})

	t.Run("valid bot passes", func(t *testing.T) {
		b := bot.NewBot("acme-bot", newTestPhone(t), nil, "acme", false, bot.Features{})
		assert.NoError(t, b.Validate())
	})
}
