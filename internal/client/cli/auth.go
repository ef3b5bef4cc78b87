package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matchpoint-app/matchpoint/internal/client/authflow"
	"github.com/matchpoint-app/matchpoint/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates an account. A
// successful registration opens a session, so the post-login flow runs too
// and the resulting navigation target is printed.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	target, err := a.orch.Register(ctx, email, string(password))
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	fmt.Printf("Welcome! -> %s\n", target)
	return nil
}

// Login prompts for credentials and authenticates. On success the session is
// confirmed with a fresh probe before the navigation target is printed; the
// other tabs of the same user pick the login up through the relay.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	target, err := a.orch.Login(ctx, email, string(password))
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	fmt.Printf("Logged in. -> %s\n", target)
	return nil
}

func (a *App) reportAuthError(err error) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		fmt.Println("Invalid email or password.")
	case errors.Is(err, authflow.ErrHandshakeTimeout):
		fmt.Println("Server did not confirm the session in time; state was reset, please retry.")
	default:
		fmt.Printf("Login failed: %s\n", err.Error())
	}
}

// Logout ends the session locally and server-side, and tells other tabs.
func (a *App) Logout(ctx context.Context) error {
	target := a.orch.Logout(ctx)
	fmt.Printf("Logged out. -> %s\n", target)
	return nil
}

// Whoami prints the current session snapshot.
func (a *App) Whoami(ctx context.Context) error {
	st := a.store.State()
	if !st.IsInitialized {
		fmt.Println("Session check still in progress.")
		return nil
	}
	if !st.IsAuthenticated || st.User == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	u := st.User
	fmt.Printf("%s <%s>\n", u.DisplayName, u.Email)
	if u.IsAdmin {
		fmt.Println("role: admin")
	}
	if u.Bio != "" {
		fmt.Printf("bio: %s\n", u.Bio)
	}
	if bd := u.BirthData; bd != nil {
		fmt.Printf("born: %s %s in %s\n", bd.BirthDate, bd.BirthTime, bd.BirthLocation)
	}
	return nil
}
