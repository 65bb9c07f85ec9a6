package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meshpulse/meshpulse/pkg/topology"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Inspect and validate topology files",
}

var topologyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a topology YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		topo, err := topology.Load(file)
		if err != nil {
			return err
		}
		fmt.Printf("Topology OK: %d nodes, %d connections\n", len(topo.Nodes), len(topo.Connections))
		return nil
	},
}

var topologyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a topology as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		topo := topology.Default()
		if file != "" {
			loaded, err := topology.Load(file)
			if err != nil {
				return err
			}
			topo = loaded
		}

		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(topo); err != nil {
			return fmt.Errorf("failed to encode topology: %w", err)
		}
		return nil
	},
}

func init() {
	topologyValidateCmd.Flags().StringP("file", "f", "", "Topology YAML file (required)")
	_ = topologyValidateCmd.MarkFlagRequired("file")

	topologyShowCmd.Flags().StringP("file", "f", "", "Topology YAML file (default: built-in sample)")

	topologyCmd.AddCommand(topologyValidateCmd)
	topologyCmd.AddCommand(topologyShowCmd)
}
