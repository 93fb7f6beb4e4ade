package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jihwankim/covcrv/internal/obslog"
	"github.com/jihwankim/covcrv/pkg/coverage"
	prand "github.com/jihwankim/covcrv/pkg/rand"
	"github.com/spf13/cobra"
)

var (
	runSeed   int64
	runRounds int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a coverage-guided constrained-random generation loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoop()
	},
}

func init() {
	runCmd.Flags().Int64Var(&runSeed, "seed", time.Now().UnixNano(), "seed for reproduction")
	runCmd.Flags().IntVar(&runRounds, "rounds", 0, "number of rounds (0 = use config default)")
}

// roundLog is one line of the JSONL reproduction log, the demo loop's
// analogue of the teacher lineage's round-log-with-seed idiom.
type roundLog struct {
	Round  int                    `json:"round"`
	Seed   int64                  `json:"seed"`
	Values map[string]interface{} `json:"values"`
	Err    string                 `json:"error,omitempty"`
}

// buildDemoModel registers a small illustrative coverage model: an address
// class point, an operation point, and a cross of the two, wired to demo
// CoverCross's opportunistic firing via a Section.
func buildDemoModel(db *coverage.CoverageDB) (*coverage.Section, error) {
	addrClass := func(args []interface{}) interface{} {
		addr := args[0].(int)
		switch {
		case addr < 64:
			return "low"
		case addr < 192:
			return "mid"
		default:
			return "high"
		}
	}

	if _, err := coverage.NewCoverPoint(db, "mem.addr_class",
		[]interface{}{"low", "mid", "high"}, []string{"addr"},
		coverage.WithTransform(addrClass)); err != nil {
		return nil, err
	}
	if _, err := coverage.NewCoverPoint(db, "mem.op",
		[]interface{}{"read", "write"}, []string{"op"}); err != nil {
		return nil, err
	}
	if _, err := coverage.NewCoverCross(db, "mem.addr_op", []string{"mem.addr_class", "mem.op"}, nil); err != nil {
		return nil, err
	}

	return coverage.NewSection(db, "mem.addr_class", "mem.op")
}

// buildDemoRandomizer declares addr and op as constrained-random variables.
func buildDemoRandomizer(seed int64) *prand.Randomized {
	r := prand.NewRandomized(seed)
	addrDomain := make(prand.Domain, 256)
	for i := range addrDomain {
		addrDomain[i] = i
	}
	r.AddRand("addr", addrDomain)
	r.AddRand("op", prand.Domain{"read", "write"})
	return r
}

func runLoop() error {
	rounds := runRounds
	if rounds == 0 {
		rounds = cfg.Generate.Rounds
	}

	db := coverage.DB()
	section, err := buildDemoModel(db)
	if err != nil {
		return fmt.Errorf("build coverage model: %w", err)
	}
	randomizer := buildDemoRandomizer(runSeed)

	logPath := cfg.Generate.LogPath
	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("open round log: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)

	obslog.Info(fmt.Sprintf("starting generation loop: seed=%d rounds=%d", runSeed, rounds))

	for round := 1; round <= rounds; round++ {
		if err := randomizer.Randomize(); err != nil {
			rec := roundLog{Round: round, Seed: runSeed, Err: err.Error()}
			enc.Encode(rec)
			fmt.Fprintf(os.Stderr, "round %d failed to randomize, reproduce with --seed %d: %v\n", round, runSeed, err)
			return err
		}

		values := randomizer.Values()
		addr := values["addr"].(int)
		op := values["op"].(string)

		if err := section.Invoke(
			coverage.SampleArgs{Point: "mem.addr_class", Args: []interface{}{addr}},
			coverage.SampleArgs{Point: "mem.op", Args: []interface{}{op}},
		); err != nil {
			rec := roundLog{Round: round, Seed: runSeed, Values: values, Err: err.Error()}
			enc.Encode(rec)
			fmt.Fprintf(os.Stderr, "round %d failed to sample, reproduce with --seed %d: %v\n", round, runSeed, err)
			return err
		}

		enc.Encode(roundLog{Round: round, Seed: runSeed, Values: values})
	}

	root, _ := db.Get("mem")
	fmt.Println(root.String())
	obslog.Info(fmt.Sprintf("completed %d rounds, log at %s", rounds, logPath))
	return nil
}
