package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bankauth/internal/shared"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type registerForm struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the form before it goes to the server. The server applies
// the authoritative rules; this only catches obvious typos early.
func (f *registerForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&f.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Password, validation.Required, validation.Length(1, 72)),
	)
}

func (a *App) Register(ctx context.Context) error {
	var (
		f   registerForm
		err error
	)

	if f.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if f.FullName, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	f.Password = string(password)

	if err := f.Validate(); err != nil {
		return err
	}

	acc, err := a.api.Register(ctx, f.Username, f.FullName, f.Email, f.Password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s <%s> as %s\n", acc.Username, acc.Email, acc.Role)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := validation.Validate(identifier, validation.Required); err != nil {
		return fmt.Errorf("username or email %w", err)
	}

	sess, err := a.api.Login(ctx, identifier, string(password))
	if err != nil {
		return err
	}

	a.userName = sess.Username
	a.role = sess.Role
	fmt.Fprintf(a.out, "Welcome, %s. Logged in as %s (%s), session valid until %s\n",
		sess.DisplayName, sess.Username, sess.Role, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *App) Check(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = strings.Join(args, " ")
	} else {
		var err error
		if username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return err
		}
	}

	available, err := a.api.CheckUsername(ctx, username)
	if err != nil {
		return err
	}

	if available {
		fmt.Fprintf(a.out, "%q is available\n", username)
	} else {
		fmt.Fprintf(a.out, "%q is not available\n", username)
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.api.WhoAmI(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s) id=%s\n", id.Username, id.Role, id.UserID)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	a.role = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
