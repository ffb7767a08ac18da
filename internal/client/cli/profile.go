package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/activitydash/internal/client/api"
)

func (a *App) Profile(ctx context.Context) error {
	u, err := a.client.Profile(ctx, a.tokens.Access)
	if err != nil {
		return err
	}
	printProfile(u)
	return nil
}

// UpdateProfile prompts for email, first and last name. An empty answer
// keeps the current value; a single "-" clears a name.
func (a *App) UpdateProfile(ctx context.Context) error {
	var in api.ProfileUpdate

	prompts := []struct {
		label     string
		dst       **string
		clearable bool
	}{
		{"New email (empty to keep)", &in.Email, false},
		{"New first name (empty to keep, - to clear)", &in.FirstName, true},
		{"New last name (empty to keep, - to clear)", &in.LastName, true},
	}

	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		switch {
		case v == "":
		case v == "-" && p.clearable:
			empty := ""
			*p.dst = &empty
		default:
			*p.dst = &v
		}
	}

	if in.Email == nil && in.FirstName == nil && in.LastName == nil {
		printlnFn("Nothing to update")
		return nil
	}

	u, err := a.client.UpdateProfile(ctx, a.tokens.Access, in)
	if err != nil {
		return err
	}
	printlnFn("Profile updated")
	printProfile(u)
	return nil
}

func printProfile(u *api.User) {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = "-"
	}
	printlnFn(fmt.Sprintf("Username:  %s", u.Username))
	printlnFn(fmt.Sprintf("Email:     %s", u.Email))
	printlnFn(fmt.Sprintf("Name:      %s", name))
	if u.IsSuperuser {
		printlnFn("Superuser: yes")
	}
}
