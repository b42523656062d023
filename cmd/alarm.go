package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"github.com/groupalarm/alarmd/pkg/alarmcli"
)

var (
	addDays     string
	addGroup    int64
	addLabel    string
	addSound    string
	addDisabled bool

	addFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "days, d",
			Usage:       "repeat days: mon,wed,fri or daily/weekdays/weekend",
			Destination: &addDays,
		},
		cli.Int64Flag{
			Name:        "group, g",
			Usage:       "group id the alarm belongs to",
			Destination: &addGroup,
		},
		cli.StringFlag{
			Name:        "label, l",
			Usage:       "label shown when the alarm rings",
			Destination: &addLabel,
		},
		cli.StringFlag{
			Name:        "sound, s",
			Usage:       "path of the sound file to play",
			Destination: &addSound,
		},
		cli.BoolFlag{
			Name:        "disabled",
			Usage:       "create the alarm without arming it",
			Destination: &addDisabled,
		},
	}
)

func addAlarm(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return printErrWithCmdHelp(ctx, fmt.Errorf("no time provided"))
	} else if arg == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	hour, minute, err := parseClock(arg)
	if err != nil {
		return printErrWithCmdHelp(ctx, err)
	}
	days, err := parseDays(addDays)
	if err != nil {
		return printErrWithCmdHelp(ctx, err)
	}

	cctx, cancel := callCtx()
	defer cancel()
	id, err := newClient().AddAlarm(cctx, hour, minute, days, &alarmcli.AddAlarmOpts{
		GroupID:  addGroup,
		Label:    addLabel,
		SoundURI: addSound,
		Disabled: addDisabled,
	})
	if err != nil {
		printRuntimeErr(ctx, "add", "add_alarm", err)
		return nil
	}
	fmt.Printf("Alarm %d set for %02d:%02d (%s).\n", id, hour, minute, formatDays(days))
	return nil
}

func listAlarms(ctx *cli.Context) error {
	cctx, cancel := callCtx()
	defer cancel()
	alarms, err := newClient().Alarms(cctx)
	if err != nil {
		printRuntimeErr(ctx, "list", "list_alarms", err)
		return nil
	}
	if len(alarms) == 0 {
		fmt.Println("alarmctl: no alarms set")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDAYS\tGROUP\tON\tNEXT RING\tLABEL")
	for _, a := range alarms {
		on := "yes"
		if !a.Enabled {
			on = "no"
		}
		next := "-"
		if a.NextRing != "" {
			if at, err := time.Parse(time.RFC3339, a.NextRing); err == nil {
				next = at.Format("Mon 15:04")
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			a.ID, a.Time, formatDays(a.DaysOfWeek), a.GroupID, on, next, a.Label)
	}
	return w.Flush()
}

func removeAlarm(ctx *cli.Context) error {
	id, err := idArg(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().RemoveAlarm(cctx, id); err != nil {
		printRuntimeErr(ctx, "rm", "remove_alarm", err)
		return nil
	}
	fmt.Printf("Alarm %d removed.\n", id)
	return nil
}

func enableAlarm(ctx *cli.Context) error {
	return setAlarmEnabled(ctx, true)
}

func disableAlarm(ctx *cli.Context) error {
	return setAlarmEnabled(ctx, false)
}

func setAlarmEnabled(ctx *cli.Context, enabled bool) error {
	id, err := idArg(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().EnableAlarm(cctx, id, enabled); err != nil {
		printRuntimeErr(ctx, ctx.Command.Name, "set_enabled", err)
		return nil
	}
	if enabled {
		fmt.Printf("Alarm %d enabled.\n", id)
	} else {
		fmt.Printf("Alarm %d disabled.\n", id)
	}
	return nil
}
