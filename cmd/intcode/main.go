// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	icio "github.com/ezrec/intcode/io"
	"github.com/ezrec/intcode/network"
	"github.com/ezrec/intcode/pipeline"
)

// load reads a program. Files ending in .ic are assembled, all others
// are comma separated program text.
func load(path string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if strings.HasSuffix(path, ".ic") {
		asm := &cpu.Assembler{Verbose: verbose}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.ParseProgram(inf)
	}
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

// openInput opens a file for reading, with "-" as stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// openOutput opens a file for writing, with "-" as stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func runCommand() *cobra.Command {
	var ascii bool
	var input string
	var output string
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program against input and output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			prog, err := load(args[0], verbose)
			if err != nil {
				return
			}

			inf, err := openInput(input)
			if err != nil {
				return
			}
			defer inf.Close()

			ouf, err := openOutput(output)
			if err != nil {
				return
			}
			defer ouf.Close()

			var in, out icio.Channel
			var buffer *icio.Buffer
			if ascii {
				tape := &icio.Tape{Input: inf, Output: ouf}
				in, out = tape, tape
			} else {
				pending := &icio.Buffer{}
				err = pending.Unmarshal(inf)
				if err != nil {
					return
				}
				buffer = &icio.Buffer{}
				in, out = pending, buffer
			}

			emu := emulator.NewEmulator(prog, in, out)
			emu.Verbose = verbose
			emu.MaxTicks = maxTicks

			err = emu.Run()
			if err != nil {
				return
			}

			if buffer != nil {
				err = buffer.Marshal(ouf)
			}

			return
		},
	}

	cmd.Flags().BoolVarP(&ascii, "ascii", "a", false, "ASCII terminal input and output")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Input file")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Instruction limit, 0 for none")

	return cmd
}

func asmCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "asm FILE.ic",
		Short: "Assemble a program to program text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			inf, err := os.Open(args[0])
			if err != nil {
				return
			}
			defer inf.Close()

			asm := &cpu.Assembler{Verbose: verbose}
			prog, err := asm.Parse(inf)
			if err != nil {
				err = fmt.Errorf("%v: %w", args[0], err)
				return
			}

			ouf, err := openOutput(output)
			if err != nil {
				return
			}
			defer ouf.Close()

			_, err = fmt.Fprintln(ouf, prog.String())

			return
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")

	return cmd
}

func disasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm FILE",
		Short: "Disassemble program text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prog, err := load(args[0], false)
			if err != nil {
				return
			}

			for ip, entry := range cpu.Disassemble(prog.Words) {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d: %-24s ; %v\n", ip, entry.Text, entry.Words)
			}

			return
		},
	}
}

func amplifyCommand() *cobra.Command {
	var feedback bool
	var phases string
	var rounds int

	cmd := &cobra.Command{
		Use:   "amplify FILE",
		Short: "Run a program as a chain of amplifier stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			prog, err := load(args[0], verbose)
			if err != nil {
				return
			}

			pipe := pipeline.NewPipeline(prog)
			pipe.Verbose = verbose
			pipe.MaxRounds = rounds

			if len(phases) != 0 {
				var settings *cpu.Program
				settings, err = cpu.ParseProgram(strings.NewReader(phases))
				if err != nil {
					err = fmt.Errorf("--phases: %w", err)
					return
				}

				var result int64
				if feedback {
					result, err = pipe.RunFeedback(settings.Words, 0)
				} else {
					result, err = pipe.Run(settings.Words, 0)
				}
				if err != nil {
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), result)
				return
			}

			settings := []int64{0, 1, 2, 3, 4}
			if feedback {
				settings = []int64{5, 6, 7, 8, 9}
			}

			best, best_phases, err := pipe.Search(cmd.Context(), settings, feedback)
			if err != nil {
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %v\n", best, cpu.NewProgram(best_phases...))

			return
		},
	}

	cmd.Flags().BoolVar(&feedback, "feedback", false, "Feed the last stage back to the first")
	cmd.Flags().StringVar(&phases, "phases", "", "Comma separated phases; searches all settings if not set")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Feedback round limit, 0 for none")

	return cmd
}

func networkCommand() *cobra.Command {
	var size int
	var rounds int
	var first bool
	var parallel bool
	var metrics bool

	cmd := &cobra.Command{
		Use:   "network FILE",
		Short: "Run a program as a packet network with a NAT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			prog, err := load(args[0], verbose)
			if err != nil {
				return
			}

			net, err := network.NewNetwork(prog, size)
			if err != nil {
				return
			}
			net.Verbose = verbose
			net.MaxRounds = rounds
			net.Parallel = parallel

			reg := prometheus.NewRegistry()
			net.Metrics = network.NewMetrics(reg)

			out := cmd.OutOrStdout()
			if first {
				var packet network.Packet
				packet, err = net.FirstNatPacket(cmd.Context())
				if err != nil {
					return
				}
				fmt.Fprintf(out, "%d %d\n", packet.X, packet.Y)
			} else {
				var y int64
				y, err = net.Run(cmd.Context())
				if err != nil {
					return
				}
				fmt.Fprintln(out, y)
			}

			if metrics {
				families, err := reg.Gather()
				if err != nil {
					return err
				}
				for _, mf := range families {
					_, err = expfmt.MetricFamilyToText(out, mf)
					if err != nil {
						return err
					}
				}
			}

			return
		},
	}

	cmd.Flags().IntVar(&size, "size", network.DEFAULT_SIZE, "Number of nodes")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Round limit, 0 for none")
	cmd.Flags().BoolVar(&first, "first", false, "Stop at the first packet sent to the NAT")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run the nodes of each round concurrently")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print metrics when done")

	return cmd
}

// newRootCommand creates the command tree.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode processor, assembler, and orchestrators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose mode")

	rootCmd.AddCommand(
		runCommand(),
		asmCommand(),
		disasmCommand(),
		amplifyCommand(),
		networkCommand(),
	)

	return rootCmd
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("intcode: ")

	rootCmd := newRootCommand()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		log.Fatal(err)
	}
}
