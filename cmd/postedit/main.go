// Command postedit runs post edits written in abstract notation and shows
// what they did.
//
//	postedit delete 'ab<c' 'd>ef'
//	postedit render '* one' '* *two*'
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/iw2rmb/postkit/internal/logging"
)

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("postedit"),
		kong.Description("Edit posts written in abstract notation."),
		kong.UsageOnError(),
	)

	env, err := c.env(os.Stdout)
	ctx.FatalIfErrorf(err)
	if err := ctx.Run(env); err != nil {
		logging.Error("command failed", "command", ctx.Command(), "err", err)
		ctx.FatalIfErrorf(err)
	}
}
