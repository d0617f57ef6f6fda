package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/halfbit/pkg/scenario"
)

var kindDescriptions = map[string]string{
	scenario.KindBump:   "bump allocator over a fixed buffer; frees only the most recent block",
	scenario.KindSingle: "one outstanding block at the start of a fixed buffer",
	scenario.KindNull:   "supports no allocation at all",
	scenario.KindNoHeap: "default handle target; every allocation runs out of memory",
	scenario.KindHeap:   "Go heap backed blocks with allocation statistics",
	scenario.KindMmap:   "one anonymous mapping per block (unix only)",
}

type allocatorInfo struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

func init() {
	rootCmd.AddCommand(newAllocatorsCmd())
}

func newAllocatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allocators",
		Short: "List the allocator kinds a scenario can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocators()
		},
	}
}

func runAllocators() error {
	kinds := scenario.Kinds()
	infos := make([]allocatorInfo, 0, len(kinds))
	for _, kind := range kinds {
		infos = append(infos, allocatorInfo{Kind: kind, Description: kindDescriptions[kind]})
	}

	if jsonOut {
		return printJSON(infos)
	}
	for _, info := range infos {
		printInfo("%-8s %s\n", info.Kind, info.Description)
	}
	return nil
}
