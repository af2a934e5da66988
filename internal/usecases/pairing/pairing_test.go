package pairing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpairing "botfleet/internal/domain/pairing"
	"botfleet/internal/usecases/pairing"
)

type fakeGenerator struct {
	session *domainpairing.Session
	err     error
}

func (f *fakeGenerator) GeneratePairingCode(ctx context.Context, requestID, phone string) (*domainpairing.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeGenerator) GetSession(ctx context.Context, requestID string) (*domainpairing.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func TestUseCase_GeneratePairingCode(t *testing.T) {
	session := domainpairing.New("req1", "5511999990000")
	session.Code = "123-456"
	uc := pairing.New(&fakeGenerator{session: session})

	got, err := uc.GeneratePairingCode(context.Background(), "req1", "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "123-456", got.Code)
}

func TestUseCase_GeneratePairingCodePropagatesError(t *testing.T) {
	uc := pairing.New(&fakeGenerator{err: errors.New("device busy")})

	_, err := uc.GeneratePairingCode(context.Background(), "req1", "5511999990000")
	assert.EqualError(t, err, "device busy")
}

func TestUseCase_GetGuestSessionNotFound(t *testing.T) {
	uc := pairing.New(&fakeGenerator{err: domainpairing.ErrSessionNotFound})

	_, err := uc.GetGuestSession(context.Background(), "missing")
	assert.ErrorIs(t, err, domainpairing.ErrSessionNotFound)
}
