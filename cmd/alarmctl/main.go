package main

import (
	"fmt"
	"os"

	"github.com/groupalarm/alarmd/cmd"
)

func main() {
	if err := cmd.Execute(os.Args); err != nil {
		fmt.Println("alarmctl:", err.Error())
		os.Exit(1)
	}
}
