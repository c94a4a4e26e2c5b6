// Command copc-info prints the header, octree census and metadata of a
// COPC file.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	copc "github.com/beetlebugorg/copc/pkg/v1"
)

var (
	showNodes bool
	showWkt   bool
)

var rootCmd = &cobra.Command{
	Use:   "copc-info <file>",
	Short: "Inspect a Cloud Optimized Point Cloud file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&showNodes, "nodes", false, "list every hierarchy node")
	rootCmd.Flags().BoolVar(&showWkt, "wkt", false, "print the coordinate system WKT")
}

func run(path string) error {
	reader, err := copc.OpenFile(path, copc.DefaultReaderOptions())
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	info := reader.CopcInfo()

	fmt.Printf("File:            %s\n", path)
	fmt.Printf("Point format:    %d (record length %d)\n", header.PointFormat(), header.PointRecordLength)
	fmt.Printf("Points:          %d\n", header.NumberOfPoints)
	fmt.Printf("Extent:          [%.3f %.3f %.3f] .. [%.3f %.3f %.3f]\n",
		header.MinX, header.MinY, header.MinZ, header.MaxX, header.MaxY, header.MaxZ)
	fmt.Printf("Cube center:     [%.3f %.3f %.3f] half size %.3f\n",
		info.CenterX, info.CenterY, info.CenterZ, info.HalfSize)
	fmt.Printf("Root spacing:    %.4f\n", info.Spacing)
	if info.GpsTimeMin != 0 || info.GpsTimeMax != 0 {
		fmt.Printf("GPS time:        %.3f .. %.3f\n", info.GpsTimeMin, info.GpsTimeMax)
	}
	if dims := reader.ExtraDimensions(); len(dims) > 0 {
		fmt.Printf("Extra dims:      ")
		for i, d := range dims {
			if i > 0 {
				fmt.Printf(", ")
			}
			fmt.Printf("%s(x%d)", d.Name, d.ComponentCount())
		}
		fmt.Println()
	}

	nodes, err := reader.GetAllNodes()
	if err != nil {
		return err
	}

	byDepth := map[int32]struct {
		nodes  int
		points int64
	}{}
	maxDepth := int32(0)
	for _, n := range nodes {
		c := byDepth[n.Key.Depth]
		c.nodes++
		c.points += int64(n.PointCount)
		byDepth[n.Key.Depth] = c
		if n.Key.Depth > maxDepth {
			maxDepth = n.Key.Depth
		}
	}

	fmt.Printf("Hierarchy:       %d nodes, max depth %d\n", len(nodes), maxDepth)
	for d := int32(0); d <= maxDepth; d++ {
		c, ok := byDepth[d]
		if !ok {
			continue
		}
		fmt.Printf("  depth %2d:      %6d nodes %12d points  (resolution %.4f)\n",
			d, c.nodes, c.points, info.Spacing/float64(int64(1)<<d))
	}

	if showNodes {
		keys := make([]string, 0, len(nodes))
		byKey := make(map[string]*copc.Node, len(nodes))
		for _, n := range nodes {
			keys = append(keys, n.Key.String())
			byKey[n.Key.String()] = n
		}
		sort.Strings(keys)
		fmt.Println("Nodes:")
		for _, k := range keys {
			n := byKey[k]
			fmt.Printf("  %-12s %10d points %12d bytes\n", k, n.PointCount, n.ByteSize)
		}
	}

	if showWkt {
		if wkt := reader.Wkt(); wkt != "" {
			fmt.Printf("WKT:\n%s\n", wkt)
		} else {
			fmt.Println("WKT: (none)")
		}
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
