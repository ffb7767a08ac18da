package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/activitydash/internal/client/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	out := capturePrintln(t)
	f := &fakeClient{profile: &api.User{Username: "alice", Email: "a@example.com", FirstName: "Alice", IsSuperuser: true}}
	a := loggedIn(newTestApp(f))

	require.NoError(t, a.Profile(context.Background()))
	assert.Equal(t, []string{
		"Username:  alice",
		"Email:     a@example.com",
		"Name:      Alice",
		"Superuser: yes",
	}, *out)
}

func TestUpdateProfile(t *testing.T) {
	capturePrintln(t)
	stubInputs(t, []string{"", "Alice", "-"}, nil)

	f := &fakeClient{profile: &api.User{Username: "alice"}}
	a := loggedIn(newTestApp(f))

	require.NoError(t, a.UpdateProfile(context.Background()))
	require.NotNil(t, f.update)
	assert.Nil(t, f.update.Email)
	require.NotNil(t, f.update.FirstName)
	assert.Equal(t, "Alice", *f.update.FirstName)
	require.NotNil(t, f.update.LastName)
	assert.Equal(t, "", *f.update.LastName)
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	out := capturePrintln(t)
	stubInputs(t, []string{"", "", ""}, nil)

	f := &fakeClient{}
	a := loggedIn(newTestApp(f))

	require.NoError(t, a.UpdateProfile(context.Background()))
	assert.Nil(t, f.update)
	assert.Equal(t, []string{"Nothing to update"}, *out)
}

func TestUpdateProfile_DashIsLiteralEmail(t *testing.T) {
	capturePrintln(t)
	stubInputs(t, []string{"-", "", ""}, nil)

	f := &fakeClient{updateErr: &api.Error{Status: 400, Message: "Invalid input."}}
	a := loggedIn(newTestApp(f))

	require.Error(t, a.UpdateProfile(context.Background()))
	require.NotNil(t, f.update.Email)
	assert.Equal(t, "-", *f.update.Email)
}
