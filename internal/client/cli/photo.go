package cli

import (
	"context"
	"fmt"
)

// PhotoUpload requests a presigned upload slot for a profile photo and
// prints it; the actual PUT happens out of band (curl, a browser, an app).
func (a *App) PhotoUpload(ctx context.Context) error {
	if !a.checkAccess(ctx, "/profile/photo") {
		return nil
	}

	url, key, err := a.client.PhotoUploadURL(ctx)
	if err != nil {
		fmt.Printf("Could not get an upload slot: %s\n", err.Error())
		return err
	}

	fmt.Printf("Upload your photo with an HTTP PUT to:\n  %s\nstorage key: %s\n", url, key)
	return nil
}

// PhotoShow prints a presigned link to the current profile photo.
func (a *App) PhotoShow(ctx context.Context) error {
	if !a.checkAccess(ctx, "/profile/photo") {
		return nil
	}

	url, err := a.client.PhotoURL(ctx)
	if err != nil {
		fmt.Printf("Could not get the photo link: %s\n", err.Error())
		return err
	}
	if url == "" {
		fmt.Println("No photo uploaded yet.")
		return nil
	}

	fmt.Println(url)
	return nil
}
