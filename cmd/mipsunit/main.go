// Command mipsunit loads a raw big-endian MIPS32 binary and runs it to
// completion (or until a signal arrives), printing the console output; with
// -v it also logs the final v0, v1 and pc.
//
// Grounded on the teacher's cmd/mipsvm/main.go: flag-parsed verbose logging,
// a goroutine running the program while main waits on a done channel or an
// OS signal, and the "printIfVerbose" helper all carry over, generalized
// from a flat-memory CPU loop to a unit.Device run. The keyboard-forwarding
// goroutine mirrors the teacher's (unreachable in the LC-3 build but present
// in root main.go) use of github.com/eiannone/keyboard plus golang.org/x/term
// raw-mode setup, redirected at the MIPS keyboard MMIO window instead of an
// LC-3 KBSR/KBDR trap.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"mipsunit/internal/binary"
	"mipsunit/internal/config"
	"mipsunit/internal/regnames"
	"mipsunit/internal/unit"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	timeout := flag.Duration("timeout", 0, "execution timeout (0 uses the config default)")
	withDisplay := flag.Bool("display", false, "mount the MMIO display region")
	withKeyboard := flag.Bool("keyboard", false, "mount the MMIO keyboard region and forward real keystrokes")
	configPath := flag.String("config", "", "optional YAML config file (MIPSUNIT_* env vars always apply)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: mipsunit [-v] [-timeout d] [-display] [-keyboard] [-config path] <raw_mips32_binary_file>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *withDisplay {
		cfg.WithDisplay = true
	}
	if *withKeyboard {
		cfg.WithKeyboard = true
	}
	if *timeout > 0 {
		cfg.DefaultTimeout = *timeout
	}

	printIfVerbose(*verbose, "loading %s...", flag.Arg(0))
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to read file: %v", err)
	}

	bin, err := load(data)
	if err != nil {
		log.Fatalf("failed to load binary: %v", err)
	}

	printIfVerbose(*verbose, "mounting device...")
	device, err := unit.New(bin, unit.Config{
		HistoryCapacity: cfg.HistoryCapacity,
		WithDisplay:     cfg.WithDisplay,
		WithKeyboard:    cfg.WithKeyboard,
	})
	if err != nil {
		log.Fatalf("failed to mount device: %v", err)
	}

	if cfg.WithKeyboard {
		stopKeys := forwardKeystrokes(*verbose, device)
		defer stopKeys()
	}

	conditions := []unit.Condition{unit.UntilComplete()}
	if cfg.DefaultTimeout > 0 {
		conditions = append(conditions, unit.WithTimeout(cfg.DefaultTimeout))
	}

	done := make(chan error, 1)
	printIfVerbose(*verbose, "running...")
	start := time.Now()

	go func() {
		_, err := device.RunUntil(context.Background(), conditions...)
		done <- err
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		printIfVerbose(*verbose, "signal received, pausing...")
		device.Executor.Pause()
		runErr = <-done
	case runErr = <-done:
	}

	elapsed := time.Since(start)
	printIfVerbose(*verbose, "stopped after %s", elapsed)

	if device.Console.Len() > 0 {
		os.Stdout.Write(device.Console.Bytes())
	}

	if runErr != nil {
		log.Fatalf("execution error: %v", runErr)
	}

	printIfVerbose(*verbose, "final registers: v0=%d v1=%d pc=0x%08x",
		device.Get(regnames.V0), device.Get(regnames.V1), device.Get(regnames.PC))
}

// load wraps raw instruction bytes into a single-segment Binary, bypassing
// the token-stream assembler entirely — this command runs already-assembled
// machine code, it doesn't compile source.
func load(data []byte) (*binary.Binary, error) {
	b := binary.NewBuilder().WithMode(binary.ModeText)
	if _, err := b.AppendBytes(data); err != nil {
		return nil, err
	}
	return b.Build()
}

// forwardKeystrokes puts the terminal in raw mode and relays each keypress
// into the keyboard MMIO window's first byte, the MIPS-domain analogue of
// the teacher's LC-3 keyboard trap. Returns a cleanup function restoring the
// terminal and closing the keyboard stream.
func forwardKeystrokes(verbose bool, device *unit.Device) func() {
	base, ok := device.KeyboardBase()
	if !ok {
		return func() {}
	}

	var restore func()
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prior, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			printIfVerbose(verbose, "could not enter raw mode: %v", err)
		} else {
			restore = func() { _ = term.Restore(int(os.Stdin.Fd()), prior) }
		}
	}

	if err := keyboard.Open(); err != nil {
		printIfVerbose(verbose, "could not open keyboard: %v", err)
		return func() {
			if restore != nil {
				restore()
			}
		}
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			b := byte(char)
			if char == 0 {
				b = byte(key)
			}
			if err := device.SetData(base, []byte{b}); err != nil {
				return
			}
		}
	}()

	return func() {
		close(stop)
		_ = keyboard.Close()
		if restore != nil {
			restore()
		}
	}
}

func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}
