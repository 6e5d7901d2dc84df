package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lsra-go/lsra"
	"github.com/lsra-go/lsra/internal/demo"
	"github.com/lsra-go/lsra/target"
)

func newAllocateCmd(log *logrus.Logger) *cobra.Command {
	var targetName string
	var stress bool

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Run the allocator over the built-in demo module and print assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cmd.Flags().Changed("target") {
				targetName = cfg.target
			}
			if !cmd.Flags().Changed("stress") {
				stress = cfg.stress
			}

			abi, err := resolveTarget(targetName)
			if err != nil {
				return err
			}

			fn, locals := demo.Build(abi)
			alloc := lsra.NewAllocator(fn, lsra.Options{MinOpts: cfg.minOpts})
			if stress {
				alloc.SetStressHook(demo.NarrowToOneRegister)
				log.Debug("stress hook installed")
			}
			alloc.Allocate()
			alloc.VerifyFinalAllocation()

			for v := 0; v < locals.Count(); v++ {
				if locals.IsRegister(v) {
					fmt.Fprintf(cmd.OutOrStdout(), "var %d -> %s\n", v, abi.RealRegName(locals.RegNum(v)))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "var %d -> stack\n", v)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&targetName, "target", "amd64", "target ABI: amd64, arm64, or arm32")
	cmd.Flags().BoolVar(&stress, "stress", false, "install a stress hook that narrows every candidate mask to one register")
	return cmd
}

func resolveTarget(name string) (lsra.TargetABI, error) {
	switch name {
	case "amd64":
		return target.AMD64{}, nil
	case "arm64":
		return target.ARM64{}, nil
	case "arm32":
		return target.ARM32{}, nil
	default:
		return nil, fmt.Errorf("lsrac: unknown target %q", name)
	}
}
