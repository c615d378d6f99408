package main

import (
	"github.com/alecthomas/kong"

	"github.com/bayoss/landscape2/cmd/landscape/commands"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("landscape"),
		kong.Description("Build and publish landscape websites."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(&commands.Global{}),
	)

	err := parser.Run(cli)
	errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
