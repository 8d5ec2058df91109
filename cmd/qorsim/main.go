// Command qorsim runs a small fixed set of scheduler threads against
// the qor package, standing in for original_source/software/system/
// main.c's RUN_TESTS harness (UserTask_1/2/3, IdleTaskFunction) without
// any of the Pico SDK hardware calls it also exercised. It exists to
// demonstrate and manually probe scheduler behavior — mailbox handoffs,
// sleep-based rotation, the sleeping-fallback flag — against the
// console instead of an oscilloscope on a GPIO pin.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openstoryteller/chip32/internal/buildinfo"
	"github.com/openstoryteller/chip32/pkg/qor"
	"github.com/openstoryteller/chip32/pkg/qor/luahost"
)

func main() {
	var (
		runFor           = flag.Duration("for", 3*time.Second, "how long to run the simulation before exiting")
		sleepingFallback = flag.Bool("sleeping-fallback", true, "fall back to the highest-priority sleeping thread when none are active")
		script           = flag.String("script", "", "optional Lua script run as an additional thread (see pkg/qor/luahost)")
		showVersion      = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if buildinfo.PrintIfRequested(os.Stdout, *showVersion) {
		return
	}

	sched := qor.New(qor.Config{SleepingFallback: *sleepingFallback})

	// events stands in for UserTask_1/UserTask_2's shared mailbox "b":
	// UserTask_2 notifies it, UserTask_1 wakes and toggles its LED.
	events := qor.NewMailbox(sched, 10)

	sched.CreateThread("UserTask_1", 2, func(th *qor.Thread) {
		for {
			fmt.Println("UserTask_1: LED on")
			if _, result := events.Wait(th, 3000); result != qor.WaitOk {
				fmt.Println("UserTask_1: mailbox wait timed out")
			}
			fmt.Println("UserTask_1: LED off")
		}
	})

	sched.CreateThread("UserTask_2", 1, func(th *qor.Thread) {
		for {
			th.Sleep(400)
			fmt.Println("UserTask_2: wake_up")
			events.Notify(uint32(34), false)
		}
	})

	sched.CreateThread("UserTask_3", 3, func(th *qor.Thread) {
		for {
			fmt.Println("UserTask_3: LED off")
			th.Sleep(500)
			fmt.Println("UserTask_3: LED on")
			th.Sleep(500)
		}
	})

	if *script != "" {
		source, err := os.ReadFile(*script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", *script, err)
			os.Exit(1)
		}
		host := luahost.New(sched, map[string]*qor.Mailbox{"events": events})
		defer host.Close()
		sched.CreateThread("lua:"+*script, 2, host.Entry(*script, string(source)))
	}

	sched.Start(func(th *qor.Thread) {
		for {
			th.Yield()
		}
	})

	time.Sleep(*runFor)
	fmt.Println("qorsim: done")
}
