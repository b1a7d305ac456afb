package cli

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/netx"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// putPresigned is a test seam for netx.PutPresigned.
var putPresigned = netx.PutPresigned

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

// Register asks for the account details and creates the account. The avatar
// is the storage key printed by "upload avatar".
func (a *App) Register(ctx context.Context) error {
	var req client.RegisterRequest
	var err error

	if req.FullName, err = a.prompt("Full name"); err != nil {
		return err
	}
	if req.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if req.UserName, err = a.prompt("Username"); err != nil {
		return err
	}
	if req.Avatar, err = a.prompt("Avatar key (see 'upload avatar')"); err != nil {
		return err
	}
	if req.CoverImage, err = a.prompt("Cover image key (optional)"); err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	req.Password = string(password)

	u, err := a.client.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. You can log in now.\n", u.UserName)
	return nil
}

// Login asks for a username or email and a password and starts a session.
func (a *App) Login(ctx context.Context) error {
	login, err := a.prompt("Username or email")
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.client.Login(ctx, login, string(password))
	if err != nil {
		return err
	}

	a.userName = u.UserName
	fmt.Fprintf(a.out, "Logged in as %s\n", u.UserName)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}

	a.userName = u.UserName
	fmt.Fprintf(a.out, "%s <%s> %s\n", u.UserName, u.Email, u.FullName)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.client.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer wipe(oldPassword)

	newPassword, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer wipe(newPassword)

	if err := a.client.ChangePassword(ctx, string(oldPassword), string(newPassword)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) UpdateAccount(ctx context.Context) error {
	fullName, err := a.prompt("Full name")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}

	u, err := a.client.UpdateAccount(ctx, fullName, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account updated: %s <%s>\n", u.FullName, u.Email)
	return nil
}

// Upload requests a presigned URL for kind. With a path the file is sent
// right away; otherwise the URL is printed for the user to PUT to. Either
// way the key to use when registering is printed.
func (a *App) Upload(ctx context.Context, kind, path string) error {
	up, err := a.client.RequestUpload(ctx, kind)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Fprintf(a.out, "key: %s\n%s %s\nvalid until %s\n", up.Key, up.Method, up.URL, up.ExpiresAt.Format("15:04:05"))
		return nil
	}

	f, size, err := filex.OpenUpload(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := putPresigned(ctx, up.URL, mime.TypeByExtension(filepath.Ext(path)), f, size); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s\nkey: %s\n", path, up.Key)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
