package authservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/authsvc"
	"github.com/ichigozero/tasktracker/usersvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	known   map[uuid.UUID]bool
	lookups int
	err     error
}

func (s *stubUsers) User(_ context.Context, id uuid.UUID) (usersvc.User, error) {
	s.lookups++
	if s.err != nil {
		return usersvc.User{}, s.err
	}
	if !s.known[id] {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return usersvc.User{ID: id}, nil
}

func (s *stubUsers) CreateUser(context.Context, string, string) (usersvc.User, error) {
	return usersvc.User{}, errors.New("not implemented")
}

func TestResolve(t *testing.T) {
	alice := uuid.New()
	users := &stubUsers{known: map[uuid.UUID]bool{alice: true}}
	svc := New(users, log.NewNopLogger())

	id, err := svc.Resolve(context.Background(), alice.String())
	require.NoError(t, err)
	assert.Equal(t, alice, id)
	assert.Equal(t, 1, users.lookups, "exactly one user lookup per resolution")

	id, err = svc.Resolve(context.Background(), strings.ToUpper(alice.String()))
	require.NoError(t, err)
	assert.Equal(t, alice, id)
}

func TestResolve_Failures(t *testing.T) {
	for _, tc := range []struct {
		name       string
		credential string
		want       error
		lookups    int
	}{
		{"missing", "", authsvc.ErrCredentialMissing, 0},
		{"malformed", "not-a-uuid", authsvc.ErrCredentialMalformed, 0},
		{"unhyphenated", strings.ReplaceAll(uuid.New().String(), "-", ""), authsvc.ErrCredentialMalformed, 0},
		{"braced", "{" + uuid.New().String() + "}", authsvc.ErrCredentialMalformed, 0},
		{"unknown", uuid.New().String(), authsvc.ErrUnknownUser, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			users := &stubUsers{}
			svc := NewBasicService(users)

			id, err := svc.Resolve(context.Background(), tc.credential)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, uuid.Nil, id)
			assert.Equal(t, tc.lookups, users.lookups)
		})
	}
}

func TestResolve_StoreFailure(t *testing.T) {
	users := &stubUsers{err: errors.New("connection refused")}
	svc := NewBasicService(users)

	_, err := svc.Resolve(context.Background(), uuid.New().String())
	assert.EqualError(t, err, "connection refused")
	assert.NotErrorIs(t, err, authsvc.ErrUnknownUser)
}
