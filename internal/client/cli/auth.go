package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/activitydash/internal/client/api"
	"github.com/dmitrijs2005/activitydash/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password and creates the account.
// It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.client.Register(ctx, userName, email, string(password))
	if err != nil {
		return err
	}

	printlnFn("Registered", u.Username+". You can login now.")
	return nil
}

// Login prompts for credentials and keeps the returned token pair in memory.
// A failed login leaves any previous session untouched.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pair, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	a.tokens = pair
	a.userName = userName
	printlnFn("Login successful")
	return nil
}

// Logout blacklists the refresh token on the server and forgets the session.
// If the server no longer accepts the tokens the local session is dropped
// anyway; transport failures keep it so the user can retry.
func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx, a.tokens.Access, a.tokens.Refresh)
	if err != nil && !sessionRejected(err) {
		return err
	}

	a.tokens = nil
	a.userName = ""
	printlnFn("Logged out")
	return nil
}

func sessionRejected(err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized
}
