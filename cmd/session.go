package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

func status(ctx *cli.Context) error {
	cctx, cancel := callCtx()
	defer cancel()
	c := newClient()
	st, err := c.Status(cctx)
	if err != nil {
		printRuntimeErr(ctx, "status", "session_status", err)
		return nil
	}
	if !st.Ringing {
		fmt.Println("No alarm is ringing.")
		return nil
	}
	fmt.Printf("Alarm %d is RINGING. Resolve with: alarmctl dismiss %d | snooze %d\n",
		st.AlarmID, st.AlarmID, st.AlarmID)
	return nil
}

// ringingAlarmID resolves the command's id argument, falling back to the
// currently ringing alarm when none is given.
func ringingAlarmID(ctx *cli.Context) (int64, error) {
	if ctx.Args().First() != "" {
		return idArg(ctx)
	}
	cctx, cancel := callCtx()
	defer cancel()
	st, err := newClient().Status(cctx)
	if err != nil {
		printRuntimeErr(ctx, ctx.Command.Name, "session_status", err)
		return 0, nil
	}
	if !st.Ringing {
		fmt.Println("No alarm is ringing.")
		return 0, nil
	}
	return st.AlarmID, nil
}

func dismiss(ctx *cli.Context) error {
	id, err := ringingAlarmID(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().Dismiss(cctx, id); err != nil {
		printRuntimeErr(ctx, "dismiss", "dismiss", err)
		return nil
	}
	fmt.Printf("Alarm %d dismissed.\n", id)
	return nil
}

func snooze(ctx *cli.Context) error {
	id, err := ringingAlarmID(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().Snooze(cctx, id); err != nil {
		printRuntimeErr(ctx, "snooze", "snooze", err)
		return nil
	}
	fmt.Printf("Alarm %d snoozed.\n", id)
	return nil
}

func silenceRinging(ctx *cli.Context) error {
	id, err := ringingAlarmID(ctx)
	if err != nil || id == 0 {
		return err
	}
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().SilenceRingingGroup(cctx, id); err != nil {
		printRuntimeErr(ctx, "silence-ringing", "silence_group", err)
		return nil
	}
	fmt.Printf("Alarm %d silenced together with its group for today.\n", id)
	return nil
}

func watch(ctx *cli.Context) error {
	wctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	changes, err := newClient().Watch(wctx)
	if err != nil {
		printRuntimeErr(ctx, "watch", "connect", err)
		return nil
	}
	fmt.Println("Watching for changes, interrupt to stop.")
	for ch := range changes {
		fmt.Printf("%s %s id=%d\n", ch.Table, ch.Op, ch.ID)
	}
	return nil
}

func stopDaemon(ctx *cli.Context) error {
	cctx, cancel := callCtx()
	defer cancel()
	if err := newClient().Shutdown(cctx); err != nil {
		printRuntimeErr(ctx, "stop", "shutdown", err)
		return nil
	}
	fmt.Println("Daemon stopping.")
	return nil
}

func recoverAlarms(ctx *cli.Context) error {
	cctx, cancel := callCtx()
	defer cancel()
	n, err := newClient().Recover(cctx)
	if err != nil {
		printRuntimeErr(ctx, "recover", "recover", err)
		return nil
	}
	fmt.Printf("Re-armed %d alarm(s).\n", n)
	return nil
}
