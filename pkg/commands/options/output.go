package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/client"
)

// ErrNotSignedIn replaces a rejected session, which carries no message of
// its own.
var ErrNotSignedIn = errors.New("not signed in: run `daybook login` first")

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError turns err into what a person should read. With --json the
// error is printed as {"error": "..."} and swallowed.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil {
		return nil
	}
	err = Explain(err)
	if o.JSON {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}

// Explain maps client errors onto their display message.
func Explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrUnauthenticated):
		return ErrNotSignedIn
	case errors.Is(err, client.ErrTransport):
		return errors.New(client.Message(err))
	}
	var herr *client.HTTPError
	if errors.As(err, &herr) {
		return errors.New(herr.Message)
	}
	return err
}
