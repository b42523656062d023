package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli"
)

func listGroups(ctx *cli.Context) error {
	cctx, cancel := callCtx()
	defer cancel()
	groups, err := newClient().Groups(cctx)
	if err != nil {
		printRuntimeErr(ctx, "groups", "list_groups", err)
		return nil
	}
	if len(groups) == 0 {
		fmt.Println("alarmctl: no groups")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tALARMS\tSILENCED")
	for _, g := range groups {
		silenced := "-"
		if g.SilencedDate != "" {
			silenced = g.SilencedDate
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", g.ID, g.Name, g.AlarmCount, silenced)
	}
	return w.Flush()
}

func addGroupCmd(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return printErrWithCmdHelp(ctx, fmt.Errorf("no group name provided"))
	} else if name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cctx, cancel := callCtx()
	defer cancel()
	id, err := newClient().AddGroup(cctx, name)
	if err != nil {
		printRuntimeErr(ctx, "group-add", "add_group", err)
		return nil
	}
	fmt.Printf("Group %d (%s) created.\n", id, name)
	return nil
}

func removeGroup(ctx *cli.Context) error {
	id, err := idArg(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().RemoveGroup(cctx, id); err != nil {
		printRuntimeErr(ctx, "group-rm", "remove_group", err)
		return nil
	}
	fmt.Printf("Group %d and its alarms removed.\n", id)
	return nil
}

func silenceGroup(ctx *cli.Context) error {
	id, err := idArg(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().SilenceGroup(cctx, id); err != nil {
		printRuntimeErr(ctx, "silence", "silence_group", err)
		return nil
	}
	fmt.Printf("Group %d silenced for today.\n", id)
	return nil
}

func unsilenceGroup(ctx *cli.Context) error {
	id, err := idArg(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().UnsilenceGroup(cctx, id); err != nil {
		printRuntimeErr(ctx, "unsilence", "unsilence_group", err)
		return nil
	}
	fmt.Printf("Group %d unsilenced.\n", id)
	return nil
}
