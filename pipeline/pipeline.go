// Package pipeline chains Intcode processors stage to stage, optionally
// feeding the last stage's output back to the first.
package pipeline

import (
	"context"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/intcode/cpu"
)

// Pipeline runs copies of one program as a chain of stages.
type Pipeline struct {
	Verbose bool         // If set, enables verbose logging.
	Program *cpu.Program // Program run by every stage.

	MaxRounds int // If non-zero, the most feedback rounds before ErrRoundLimit.
	MaxTicks  int // If non-zero, the tick limit of each stage per run.
}

// stage is a single processor with its pending input.
type stage struct {
	*cpu.Cpu
	queue cpu.Queue
}

// NewPipeline creates a new pipeline for a program.
func NewPipeline(prog *cpu.Program) *Pipeline {
	return &Pipeline{Program: prog}
}

// stages creates one stage per phase, each primed with its phase.
func (pipe *Pipeline) stages(phases []int64) (stages []*stage, err error) {
	if len(phases) == 0 {
		err = ErrNoStages
		return
	}

	boot := cpu.NewCpu(pipe.Program)
	boot.MaxTicks = pipe.MaxTicks

	stages = make([]*stage, len(phases))
	for n, phase := range phases {
		stages[n] = &stage{Cpu: boot.Clone()}
		stages[n].queue.Push(phase)
	}

	return
}

// Run passes signal once through every stage, each stage primed with its
// phase. Every output of a stage is input to the next; the result is the
// last output of the final stage.
func (pipe *Pipeline) Run(phases []int64, signal int64) (result int64, err error) {
	stages, err := pipe.stages(phases)
	if err != nil {
		return
	}

	signals := []int64{signal}
	for n, st := range stages {
		st.queue.Push(signals...)
		signals, _, err = st.RunQueue(&st.queue)
		if err != nil {
			err = &ErrStage{Stage: n, Err: err}
			return
		}
		if pipe.Verbose {
			log.Printf("stage %d: %v", n, signals)
		}
		if len(signals) == 0 {
			err = &ErrStage{Stage: n, Err: ErrNoSignal}
			return
		}
	}

	result = signals[len(signals)-1]

	return
}

// RunFeedback runs the stages round robin, with the final stage's output
// fed back to the first, until every stage has halted. The result is the
// last signal to leave the final stage.
func (pipe *Pipeline) RunFeedback(phases []int64, signal int64) (result int64, err error) {
	stages, err := pipe.stages(phases)
	if err != nil {
		return
	}

	stages[0].queue.Push(signal)

	seen := false
	for round := 0; ; round++ {
		if pipe.MaxRounds > 0 && round >= pipe.MaxRounds {
			err = ErrRoundLimit
			return
		}

		progress := false
		halted := 0
		for n, st := range stages {
			if st.Halted() {
				halted++
				continue
			}

			ticks := st.Ticks
			var outputs []int64
			outputs, _, err = st.RunQueue(&st.queue)
			if err != nil {
				err = &ErrStage{Stage: n, Err: err}
				return
			}
			if st.Ticks != ticks {
				progress = true
			}
			if st.Halted() {
				halted++
			}

			if pipe.Verbose {
				log.Printf("round %d: stage %d: %v %v", round, n, st.Status, outputs)
			}

			if len(outputs) == 0 {
				continue
			}

			next := stages[(n+1)%len(stages)]
			next.queue.Push(outputs...)

			if n == len(stages)-1 {
				result = outputs[len(outputs)-1]
				seen = true
			}
		}

		if halted == len(stages) {
			break
		}

		if !progress {
			err = ErrDeadlock
			return
		}
	}

	if !seen {
		err = ErrNoSignal
		return
	}

	return
}

// Search runs the pipeline with every ordering of settings, in parallel,
// and returns the largest result and the phases that produced it.
// Of equal results, the earliest ordering wins.
func (pipe *Pipeline) Search(ctx context.Context, settings []int64, feedback bool) (best int64, phases []int64, err error) {
	perms := Permutations(settings)
	results := make([]int64, len(perms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for n, perm := range perms {
		g.Go(func() (err error) {
			err = ctx.Err()
			if err != nil {
				return
			}
			if feedback {
				results[n], err = pipe.RunFeedback(perm, 0)
			} else {
				results[n], err = pipe.Run(perm, 0)
			}
			return
		})
	}

	err = g.Wait()
	if err != nil {
		return
	}

	for n, result := range results {
		if phases == nil || result > best {
			best = result
			phases = perms[n]
		}
	}

	if pipe.Verbose {
		log.Printf("search: %d from %v", best, phases)
	}

	return
}
