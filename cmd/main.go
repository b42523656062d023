package cmd

import (
	"github.com/urfave/cli"
)

// Execute runs the alarmctl command tree.
func Execute(args []string) error {
	app := cli.App{
		Name:         "AlarmCtl",
		HelpName:     "alarmctl",
		Usage:        "A group-aware alarm clock daemon and its control tool.",
		Version:      version,
		UsageText:    "alarmctl <command> [arguments...]",
		Description:  DESCRIPTION,
		OnUsageError: usageErrorCallback,
		Flags:        []cli.Flag{socketFlag()},
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the alarm daemon in the foreground",
				Action: runDaemon,
				Flags:  append(daemonFlags, socketFlag()),
			},
			{
				Name:         "add",
				Aliases:      []string{"a"},
				Usage:        "set a new alarm",
				UsageText:    "alarmctl add HH:MM [options...]",
				Description:  AddDescription,
				OnUsageError: usageErrorCallback,
				Action:       addAlarm,
				Flags:        append(addFlags, socketFlag()),
			},
			{
				Name:         "list",
				Aliases:      []string{"l"},
				Usage:        "display all alarms",
				Description:  ListDescription,
				OnUsageError: usageErrorCallback,
				Action:       listAlarms,
				Flags:        []cli.Flag{socketFlag()},
			},
			{
				Name:      "rm",
				Usage:     "remove an alarm",
				UsageText: "alarmctl rm ID",
				Action:    removeAlarm,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:      "enable",
				Usage:     "enable an alarm and arm its next ring",
				UsageText: "alarmctl enable ID",
				Action:    enableAlarm,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:      "disable",
				Usage:     "disable an alarm and cancel its timers",
				UsageText: "alarmctl disable ID",
				Action:    disableAlarm,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:         "groups",
				Aliases:      []string{"g"},
				Usage:        "display all alarm groups",
				Description:  GroupsDescription,
				OnUsageError: usageErrorCallback,
				Action:       listGroups,
				Flags:        []cli.Flag{socketFlag()},
			},
			{
				Name:      "group-add",
				Usage:     "create an alarm group",
				UsageText: "alarmctl group-add NAME",
				Action:    addGroupCmd,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:      "group-rm",
				Usage:     "remove a group and all its alarms",
				UsageText: "alarmctl group-rm ID",
				Action:    removeGroup,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:         "silence",
				Usage:        "silence a group for the rest of today",
				UsageText:    "alarmctl silence GROUP_ID",
				Description:  SilenceDescription,
				OnUsageError: usageErrorCallback,
				Action:       silenceGroup,
				Flags:        []cli.Flag{socketFlag()},
			},
			{
				Name:      "unsilence",
				Usage:     "lift a group's silence for today",
				UsageText: "alarmctl unsilence GROUP_ID",
				Action:    unsilenceGroup,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "show whether an alarm is ringing",
				Action:  status,
				Flags:   []cli.Flag{socketFlag()},
			},
			{
				Name:      "dismiss",
				Usage:     "dismiss the ringing alarm",
				UsageText: "alarmctl dismiss [ID]",
				Action:    dismiss,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:      "snooze",
				Usage:     "snooze the ringing alarm",
				UsageText: "alarmctl snooze [ID]",
				Action:    snooze,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:      "silence-ringing",
				Usage:     "silence the ringing alarm's whole group for today",
				UsageText: "alarmctl silence-ringing [ID]",
				Action:    silenceRinging,
				Flags:     []cli.Flag{socketFlag()},
			},
			{
				Name:         "watch",
				Usage:        "stream alarm and group changes",
				Description:  WatchDescription,
				OnUsageError: usageErrorCallback,
				Action:       watch,
				Flags:        []cli.Flag{socketFlag()},
			},
			{
				Name:   "recover",
				Usage:  "re-arm every enabled alarm from the database",
				Action: recoverAlarms,
				Flags:  []cli.Flag{socketFlag()},
			},
			{
				Name:   "stop",
				Usage:  "stop the daemon",
				Action: stopDaemon,
				Flags:  []cli.Flag{socketFlag()},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints the installed version",
				Action:  getVersion,
			},
		},
		Action:      status,
		HideHelp:    true,
		HideVersion: true,
	}
	return app.Run(args)
}
