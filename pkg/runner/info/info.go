// Package info provides the runner behind `daybook status`.
package info

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
)

// Info prints where daybook talks to and who it is signed in as.
type Info struct {
	App        *app.Service
	ConfigFile string
	JSON       bool
	Out        io.Writer
}

// Report is the JSON form of the status.
type Report struct {
	Server        string `json:"server"`
	ConfigFile    string `json:"configFile,omitempty"`
	SessionPath   string `json:"sessionPath,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (n *Info) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not report status, no service")
	}
	st := n.App.Auth.Status(ctx)

	r := Report{
		Server:        n.App.Config.Server,
		ConfigFile:    n.ConfigFile,
		Authenticated: st.Authenticated,
	}
	if n.App.Session != nil {
		r.SessionPath = n.App.Session.BasePath()
	}
	if st.User != nil {
		r.Username = st.User.Username
	}

	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(r)
	}

	faint := color.New(color.Faint)
	cfg := r.ConfigFile
	if cfg == "" {
		cfg = faint.Sprint("none, using defaults")
	}
	session := faint.Sprint("not signed in")
	if r.Authenticated {
		session = color.GreenString("signed in as %s", r.Username)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Server:", r.Server)
	tbl.AddRow("Config:", cfg)
	tbl.AddRow("Session:", r.SessionPath)
	tbl.AddRow("Account:", session)

	pp.NewLine()
	pp.Title("daybook")
	pp.Table(tbl)
	return nil
}
