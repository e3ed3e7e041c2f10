package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/centsim/hawk"
	"github.com/sarchlab/centsim/mux"
	"github.com/sarchlab/centsim/sim"
	"github.com/sarchlab/centsim/simulation"
)

var runFlags struct {
	disks       []string
	trace       bool
	output      string
	monitor     bool
	monitorPort int
	browser     bool
	duration    time.Duration
	ports       int
	console     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the emulation.",
	Long: `run assembles the machine, attaches disk images and the ` +
		`console, and processes events until the duration elapses or the ` +
		`console reaches end of file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmulation()
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runFlags.disks, "disk", nil,
		"disk image per unit, in unit order (missing files leave the "+
			"unit not ready)")
	runCmd.Flags().BoolVar(&runFlags.trace, "trace", false,
		"log every traced register access to stderr")
	runCmd.Flags().StringVar(&runFlags.output, "output", "",
		"name of the recording database")
	runCmd.Flags().BoolVar(&runFlags.monitor, "monitor", false,
		"serve the state of the machine over HTTP")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server, 0 picks a free one")
	runCmd.Flags().BoolVar(&runFlags.browser, "browser", false,
		"open the monitoring page in a browser")
	runCmd.Flags().DurationVar(&runFlags.duration, "duration", 0,
		"emulated time to run for, 0 runs until stopped")
	runCmd.Flags().IntVar(&runFlags.ports, "ports", 4,
		"number of serial lines")
	runCmd.Flags().BoolVar(&runFlags.console, "console", true,
		"attach stdin to serial port 0 as the console")

	rootCmd.AddCommand(runCmd)
}

func runEmulation() error {
	b := simulation.MakeBuilder().
		WithOutputFileName(runFlags.output).
		WithNumPorts(runFlags.ports).
		WithRunDuration(sim.VTimeInNs(runFlags.duration.Nanoseconds()))

	if runFlags.trace {
		b = b.WithTraceLog(log.New(os.Stderr, "", 0))
	}

	if runFlags.monitor {
		if runFlags.monitorPort > 0 {
			b = b.WithMonitorPort(runFlags.monitorPort)
		}
		if runFlags.browser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	b, closeImages, err := attachDiskImages(b)
	if err != nil {
		return err
	}
	defer closeImages()

	if runFlags.console {
		b = b.WithConsole(consoleStream())
	}

	s := b.Build()
	defer s.Terminate()

	return s.Run()
}

// attachDiskImages opens one image per unit. A missing image is not an
// error: the firmware discovers the absent drive through the status word.
func attachDiskImages(
	b simulation.Builder,
) (simulation.Builder, func(), error) {
	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for unit, path := range runFlags.disks {
		if path == "" {
			continue
		}

		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr,
				"Disk image %s missing, unit %d not ready\n", path, unit)
			continue
		}
		if err != nil {
			closeAll()
			return b, nil, err
		}

		files = append(files, f)
		b = b.WithDiskImage(unit, hawk.Store(f))
	}

	return b, closeAll, nil
}

// consoleStream pumps stdin into a byte stream the serial card polls. The
// stream is closed on end of file, which the card turns into an orderly
// shutdown.
func consoleStream() *mux.FIFOStream {
	in := mux.NewFIFOStream()

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				in.WriteByte(buf[0])
			}
			if err != nil {
				in.Close()
				return
			}
		}
	}()

	return in
}
