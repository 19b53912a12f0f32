// pinctl pokes GPIO pins, PWM channels and shift registers from the command
// line. It is mainly a bring-up and debugging aid for new boards.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbcio/sbcio"
)

var (
	boardName string
	boardFile string
	useMmap   bool
)

func main() {
	root := &cobra.Command{
		Use:           "pinctl",
		Short:         "Inspect and drive GPIO pins, PWM channels and shift registers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&boardName, "board", "raspberrypi2", "built-in board table to use")
	root.PersistentFlags().StringVar(&boardFile, "board-file", "", "YAML board definition, overrides --board")
	root.PersistentFlags().BoolVar(&useMmap, "mmap", false, "drive pins through mapped registers instead of sysfs")

	root.AddCommand(pinsCmd(), modeCmd(), readCmd(), writeCmd(), watchCmd(), pwmCmd(), shiftCmd())

	if e := root.Execute(); e != nil {
		log.Fatal(e)
	}
}

func board() (*sbcio.Board, error) {
	if boardFile != "" {
		f, e := os.Open(boardFile)
		if e != nil {
			return nil, e
		}
		defer f.Close()
		return sbcio.LoadBoard(f)
	}
	b := sbcio.Boards()[boardName]
	if b == nil {
		names := []string{}
		for n := range sbcio.Boards() {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown board %s (built in: %s)", boardName, strings.Join(names, ", "))
	}
	return b, nil
}

// openPin resolves a pin name against the board table and returns a handle
// on the backend selected by --mmap.
func openPin(name string) (sbcio.DigitalPin, error) {
	b, e := board()
	if e != nil {
		return nil, e
	}
	if useMmap {
		return b.MemPin(name)
	}
	return b.FSPin(name)
}

func pinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "List the pins of the selected board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, e := board()
			if e != nil {
				return e
			}
			fmt.Printf("%s (peripheral base %#x)\n", b.Name, b.PeripheralBase)
			for _, p := range b.Pins {
				fmt.Printf("  %-8s bcm %-3d %s", p.Name, p.BCM, p.Capabilities)
				if p.Capabilities.Has(sbcio.CAP_PWM) {
					fmt.Printf(" (alt %d, channel %d)", p.AltFunc, p.PWMChannel)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func modeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode <pin> <in|out>",
		Short: "Set a pin's direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, e := openPin(args[0])
			if e != nil {
				return e
			}
			switch args[1] {
			case "in":
				return p.SetMode(sbcio.INPUT)
			case "out":
				return p.SetMode(sbcio.OUTPUT)
			}
			return fmt.Errorf("direction must be in or out, got %s", args[1])
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <pin>",
		Short: "Read a pin's level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, e := openPin(args[0])
			if e != nil {
				return e
			}
			if e := p.SetMode(sbcio.INPUT); e != nil {
				return e
			}
			v, e := p.DigitalRead()
			if e != nil {
				return e
			}
			fmt.Println(v)
			return nil
		},
	}
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <pin> <0|1>",
		Short: "Drive a pin high or low",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := sbcio.LOW
			switch args[1] {
			case "0", "low":
			case "1", "high":
				level = sbcio.HIGH
			default:
				return fmt.Errorf("level must be 0 or 1, got %s", args[1])
			}
			p, e := openPin(args[0])
			if e != nil {
				return e
			}
			if e := p.SetMode(sbcio.OUTPUT); e != nil {
				return e
			}
			return p.DigitalWrite(level)
		},
	}
}

func watchCmd() *cobra.Command {
	var edge string
	cmd := &cobra.Command{
		Use:   "watch <pin>",
		Short: "Print edge events on a pin until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, e := board()
			if e != nil {
				return e
			}
			// Edge watching is a sysfs facility; --mmap does not apply.
			p, e := b.FSPin(args[0])
			if e != nil {
				return e
			}
			defer p.Close()

			report := func(kind string) sbcio.InterruptHandler {
				return func(pin sbcio.Pin) { fmt.Printf("pin %d: %s\n", pin, kind) }
			}
			switch edge {
			case "rising":
				e = p.OnRising(report("rising"))
			case "falling":
				e = p.OnFalling(report("falling"))
			case "both":
				e = p.OnChange(report("change"))
			default:
				return fmt.Errorf("edge must be rising, falling or both, got %s", edge)
			}
			if e != nil {
				return e
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			<-stop
			return p.ClearInterrupts()
		},
	}
	cmd.Flags().StringVar(&edge, "edge", "both", "edge to report: rising, falling or both")
	return cmd
}

func pwmCmd() *cobra.Command {
	var periodNs int64
	var duty int
	cmd := &cobra.Command{
		Use:   "pwm <pin>",
		Short: "Run a hardware PWM signal on a pin until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, e := board()
			if e != nil {
				return e
			}
			p, e := b.PWM(args[0])
			if e != nil {
				return e
			}
			if e := p.Init(); e != nil {
				return e
			}
			defer p.Close()

			if e := p.Start(periodNs, duty); e != nil {
				return e
			}
			fmt.Printf("pwm running on %s: period %dns, duty %d%%\n", args[0], periodNs, duty)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			<-stop
			return p.Stop()
		},
	}
	cmd.Flags().Int64Var(&periodNs, "period", 1000000, "period in nanoseconds")
	cmd.Flags().IntVar(&duty, "duty", 50, "duty cycle in percent")
	return cmd
}

func shiftCmd() *cobra.Command {
	var lsbFirst bool
	var delayMicros int
	cmd := &cobra.Command{
		Use:   "shift <data-pin> <clock-pin> <hex-bytes>",
		Short: "Clock hex bytes out on a data/clock pin pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, e := hex.DecodeString(args[2])
			if e != nil {
				return fmt.Errorf("payload must be hex digits: %w", e)
			}
			data, e := openPin(args[0])
			if e != nil {
				return e
			}
			clock, e := openPin(args[1])
			if e != nil {
				return e
			}
			for _, p := range []sbcio.DigitalPin{data, clock} {
				if e := p.SetMode(sbcio.OUTPUT); e != nil {
					return e
				}
			}

			frame := sbcio.Frame{Bytes: payload, Order: sbcio.MSBFIRST, DelayMicros: delayMicros}
			if lsbFirst {
				frame.Order = sbcio.LSBFIRST
			}
			return sbcio.ShiftOutFrame(data, clock, frame)
		},
	}
	cmd.Flags().BoolVar(&lsbFirst, "lsb", false, "clock the least significant bit out first")
	cmd.Flags().IntVar(&delayMicros, "delay", 0, "microseconds to hold the clock high per bit")
	return cmd
}
