package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/groupalarm/alarmd/internal/config"
	"github.com/groupalarm/alarmd/pkg/alarmcli"
)

var socketPath string

func socketFlag() cli.Flag {
	return cli.StringFlag{
		Name:        "socket, S",
		Usage:       "path of the daemon's unix socket",
		Value:       filepath.Join(config.Dir(), "alarmd.sock"),
		Destination: &socketPath,
	}
}

func newClient() *alarmcli.Client {
	return alarmcli.NewClient(socketPath)
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

// idArg parses the required numeric id argument of a command.
func idArg(ctx *cli.Context) (int64, error) {
	arg := ctx.Args().First()
	if arg == "" {
		return 0, printErrWithCmdHelp(ctx, fmt.Errorf("no id provided"))
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, printErrWithCmdHelp(ctx, fmt.Errorf("invalid id %q", arg))
	}
	return id, nil
}

func help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		cli.ShowAppHelpAndExit(ctx, 0)
		return nil
	}
	return cli.ShowCommandHelp(ctx, arg)
}

func getVersion(ctx *cli.Context) error {
	fmt.Printf(
		"%s %s (%s_%s)\nBuild: %s=%s\n",
		ctx.App.Name,
		ctx.App.Version,
		runtime.GOOS,
		runtime.GOARCH,
		date, commit,
	)
	return nil
}

func printRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

func printErrWithCmdHelp(ctx *cli.Context, err error) error {
	if err == nil {
		return nil
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	if herr := cli.ShowCommandHelp(ctx, ctx.Command.Name); herr != nil {
		fmt.Println(herr.Error())
	}
	return nil
}

func printErrWithHelp(ctx *cli.Context, err error) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return help(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	cli.ShowAppHelpAndExit(ctx, 1)
	return nil
}

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return printErrWithCmdHelp(ctx, err)
	}
	return printErrWithHelp(ctx, err)
}
