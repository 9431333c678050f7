package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/ebet/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	addr     string
	nickname string
	email    string
	password string
	token    string
	err      error
	closed   bool
}

var bob = client.User{ID: "u-1", Nickname: "Bob", Email: "bob@gmail.com"}

func (f *fakeClient) SignUp(_ context.Context, nickname, email, password string) (*client.Session, error) {
	f.nickname, f.email, f.password = nickname, email, password
	if f.err != nil {
		return nil, f.err
	}
	return &client.Session{User: bob, Token: "tok-up"}, nil
}

func (f *fakeClient) SignIn(_ context.Context, nickname, password string) (*client.Session, error) {
	f.nickname, f.password = nickname, password
	if f.err != nil {
		return nil, f.err
	}
	return &client.Session{User: bob, Token: "tok-in"}, nil
}

func (f *fakeClient) WhoAmI(_ context.Context, token string) (*client.User, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	u := bob
	return &u, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	prevRead, prevFd := readPassword, stdinFd
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	stdinFd = func() int { return 0 }
	t.Cleanup(func() { readPassword, stdinFd = prevRead, prevFd })
}

func run(t *testing.T, fake *fakeClient, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(func(addr string) (AuthClient, error) {
		fake.addr = addr
		return fake, nil
	})
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSignUp_FlagsAndPassword(t *testing.T) {
	stubPassword(t, "secret", nil)
	fake := &fakeClient{}

	out, err := run(t, fake, "", "--addr", "srv:1", "signup", "--nickname", "Bob", "--email", "bob@gmail.com")
	require.NoError(t, err)

	assert.Equal(t, "srv:1", fake.addr)
	assert.Equal(t, "Bob", fake.nickname)
	assert.Equal(t, "bob@gmail.com", fake.email)
	assert.Equal(t, "secret", fake.password)
	assert.True(t, fake.closed)
	assert.Contains(t, out, "tok-up")
	assert.Contains(t, out, "u-1")
}

func TestSignUp_PromptsForMissingFields(t *testing.T) {
	stubPassword(t, "secret", nil)
	fake := &fakeClient{}

	out, err := run(t, fake, "Bob\nbob@gmail.com\n", "signup")
	require.NoError(t, err)

	assert.Equal(t, "Bob", fake.nickname)
	assert.Equal(t, "bob@gmail.com", fake.email)
	assert.Contains(t, out, "Nickname: ")
	assert.Contains(t, out, "Email: ")
}

func TestSignIn_ErrorFromServer(t *testing.T) {
	stubPassword(t, "wrong", nil)
	fake := &fakeClient{err: client.ErrInvalidCredentials}

	_, err := run(t, fake, "", "signin", "--nickname", "Bob")
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, "wrong", fake.password)
}

func TestSignIn_EmptyPassword(t *testing.T) {
	stubPassword(t, "", nil)
	fake := &fakeClient{}

	_, err := run(t, fake, "", "signin", "--nickname", "Bob")
	assert.EqualError(t, err, "password is required")
	assert.Empty(t, fake.nickname)
}

func TestSignIn_PasswordReadError(t *testing.T) {
	stubPassword(t, "", errors.New("not a terminal"))

	_, err := run(t, &fakeClient{}, "", "signin", "--nickname", "Bob")
	assert.ErrorContains(t, err, "not a terminal")
}

func TestWhoAmI_TokenSources(t *testing.T) {
	fake := &fakeClient{}
	out, err := run(t, fake, "", "whoami", "--token", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", fake.token)
	assert.Contains(t, out, "Bob")

	t.Setenv(TokenEnv, "from-env")
	fake = &fakeClient{}
	_, err = run(t, fake, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "from-env", fake.token)
}

func TestWhoAmI_NoToken(t *testing.T) {
	t.Setenv(TokenEnv, "")
	_, err := run(t, &fakeClient{}, "", "whoami")
	assert.ErrorContains(t, err, "no token")
}

func TestDialError(t *testing.T) {
	cmd := NewRootCmd(func(string) (AuthClient, error) { return nil, errors.New("refused") })
	cmd.SetArgs([]string{"whoami", "--token", "x"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "connect localhost:50051: refused")
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer

	v, err := GetSimpleText(bufio.NewReader(strings.NewReader("  Bob \n")), "Nickname", &out)
	require.NoError(t, err)
	assert.Equal(t, "Bob", v)
	assert.Equal(t, "Nickname: ", out.String())

	v, err = GetSimpleText(bufio.NewReader(strings.NewReader("partial")), "Nickname", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", v)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Nickname", &out)
	assert.Error(t, err)
}
