package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
	"github.com/matchpoint-app/matchpoint/internal/client/guard"
	"github.com/matchpoint-app/matchpoint/internal/common"
)

// checkAccess runs the route guard for a protected screen and reports the
// decision to the user. Denied paths are stashed, so the next login lands
// back on them.
func (a *App) checkAccess(ctx context.Context, path string) bool {
	res := a.guard.Protected(ctx, path)
	switch res.Decision {
	case guard.Wait:
		fmt.Println("Session check still in progress, try again in a moment.")
		return false
	case guard.Redirect:
		fmt.Printf("Login required. -> %s (you will return to %s)\n", res.RedirectTo, path)
		return false
	}
	return true
}

// EditProfile updates the basic profile fields. The response is adopted
// optimistically and a coalesced refresh probe re-confirms the canonical
// state shortly after the last save.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.checkAccess(ctx, "/profile") {
		return nil
	}

	current := a.store.State().User

	displayName, err := GetOptionalText(a.reader, "Display name", current.DisplayName, os.Stdout)
	if err != nil {
		return err
	}
	bio, err := GetOptionalText(a.reader, "Bio", current.Bio, os.Stdout)
	if err != nil {
		return err
	}
	gender, err := GetOptionalText(a.reader, "Gender", current.Gender, os.Stdout)
	if err != nil {
		return err
	}

	updated, err := a.client.UpdateBasicProfile(ctx, displayName, bio, gender)
	if err != nil {
		a.reportProfileError(err)
		return err
	}

	a.store.SetUser(updated)
	a.coal.Trigger()
	fmt.Println("Saved.")
	return nil
}

// EditBirthData updates the astrological birth fields. Birth time must be
// HH:mm; the server rejects anything else and the field errors are shown.
func (a *App) EditBirthData(ctx context.Context) error {
	if !a.checkAccess(ctx, "/profile/birth") {
		return nil
	}

	var current api.BirthData
	if bd := a.store.State().User.BirthData; bd != nil {
		current = *bd
	}

	date, err := GetOptionalText(a.reader, "Birth date (YYYY-MM-DD)", current.BirthDate, os.Stdout)
	if err != nil {
		return err
	}
	tm, err := GetOptionalText(a.reader, "Birth time (HH:mm)", current.BirthTime, os.Stdout)
	if err != nil {
		return err
	}
	loc, err := GetOptionalText(a.reader, "Birth location", current.BirthLocation, os.Stdout)
	if err != nil {
		return err
	}

	updated, err := a.client.UpdateBirthData(ctx, api.BirthData{
		BirthDate:     date,
		BirthTime:     tm,
		BirthLocation: loc,
	})
	if err != nil {
		a.reportProfileError(err)
		return err
	}

	a.store.SetUser(updated)
	a.coal.Trigger()
	fmt.Println("Saved.")
	return nil
}

func (a *App) reportProfileError(err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		for field, msg := range ve.Fields {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}
	if errors.Is(err, common.ErrUnauthenticated) {
		fmt.Println("Session expired, please log in again.")
		return
	}
	fmt.Printf("Save failed: %s\n", err.Error())
}

// SearchLocations runs the birth-location autocomplete. Failures are
// swallowed upstream; an empty result just prints nothing found.
func (a *App) SearchLocations(ctx context.Context, query string) error {
	suggestions := a.client.SearchLocations(ctx, query, 5)
	if len(suggestions) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("  %s (%s, %s)\n", s.DisplayName, s.Latitude, s.Longitude)
	}
	return nil
}
