// Package login provides the runners that open and close a session.
package login

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/auth"
	"tableflip.dev/daybook/pkg/printers"
)

var errNoService = errors.New("can not sign in, no service")

// Login signs in. Missing credentials are prompted for on the terminal.
type Login struct {
	App      *app.Service
	Username string
	Password string

	Stdin  io.ReadCloser
	Stdout io.WriteCloser
	Out    io.Writer
}

func (n *Login) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	if n.Username == "" {
		u, err := n.prompt("Username", false)
		if err != nil {
			return err
		}
		n.Username = u
	}
	if n.Password == "" {
		p, err := n.prompt("Password", true)
		if err != nil {
			return err
		}
		n.Password = p
	}

	user, err := n.App.Auth.Login(ctx, n.Username, n.Password)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Status(fmt.Sprintf("Signed in as %s", user.Username))
	return nil
}

func (n *Login) prompt(label string, secret bool) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	validate := func(input string) error {
		c := auth.Credentials{Username: "-", Password: input}
		if !secret {
			c = auth.Credentials{Username: input, Password: "------"}
		}
		return c.Validate()
	}

	p := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Validate:  validate,
		Stdin:     n.Stdin,
		Stdout:    n.Stdout,
	}
	if secret {
		p.Mask = '•'
	}
	return p.Run()
}

// Logout ends the session and forgets the saved cookie.
type Logout struct {
	App *app.Service
	Out io.Writer
}

func (n *Logout) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	if err := n.App.Logout(ctx); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Status("Signed out")
	return nil
}
