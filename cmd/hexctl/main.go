// Command hexctl inspects the spiral grid, checks sheet exports against it,
// and queries a running hexmapd.
//
//	hexctl coord <index>       spiral index → axial coordinate and pixel center
//	hexctl index <q> <r>       axial coordinate → spiral index
//	hexctl ring <k>            coordinates on ring k, in spiral order
//	hexctl check <file.csv>    row count, overflow, and terrain mix of a sheet export
//	hexctl status              status of a running server (waits until it answers)
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/hexmap"
	"github.com/talgya/hexmapp/internal/sheet"
	"github.com/talgya/hexmapp/internal/terrain"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	fs := flag.NewFlagSet("hexctl", flag.ExitOnError)
	radius := fs.Int("radius", envIntOrDefault("HEXMAPP_MAX_RADIUS", hexgrid.DefaultMaxRadius), "board radius")
	size := fs.Float64("size", hexgrid.DefaultHexSize, "hex size in pixels")
	strict := fs.Bool("strict", false, "reject indexes past the board instead of falling back to the origin")
	apiURL := fs.String("url", envOrDefault("HEXMAPP_API_URL", "http://localhost:8080"), "hexmapd base URL")
	wait := fs.Duration("wait", time.Minute, "how long status waits for the server")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hexctl [flags] coord|index|ring|check|status [args]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	var opts []hexgrid.TableOption
	if *strict {
		opts = append(opts, hexgrid.WithStrictBounds())
	}
	table, err := hexgrid.NewTable(*radius, opts...)
	if err != nil {
		fail(err)
	}
	layout := hexgrid.Layout{Size: *size}

	switch args[0] {
	case "coord":
		index := intArg(args, 1)
		c := table.Coord(index)
		if table.Strict() {
			if c, err = table.Lookup(index); err != nil {
				fail(err)
			}
		}
		p := layout.ToPixel(c)
		fmt.Printf("index %d → q=%d r=%d ring=%d center=(%.4f, %.4f)\n",
			index, c.Q, c.R, hexgrid.DistanceFromOrigin(c), p.X, p.Y)

	case "index":
		c := hexgrid.AxialCoord{Q: intArg(args, 1), R: intArg(args, 2)}
		i, ok := table.Index(c)
		if !ok {
			fail(fmt.Errorf("%v is outside radius %d", c, table.Radius()))
		}
		fmt.Printf("%v → index %d\n", c, i)

	case "ring":
		k := intArg(args, 1)
		ring := table.Ring(k)
		if ring == nil {
			fail(fmt.Errorf("ring %d is outside radius %d", k, table.Radius()))
		}
		first, _ := table.Index(ring[0])
		for i, c := range ring {
			fmt.Printf("%5d  q=%-4d r=%-4d\n", first+i, c.Q, c.R)
		}

	case "check":
		if len(args) < 2 {
			fail(fmt.Errorf("check needs a CSV file"))
		}
		if err := checkSheet(table, layout, args[1]); err != nil {
			fail(err)
		}

	case "status":
		if err := printStatus(*apiURL, *wait); err != nil {
			fail(err)
		}

	default:
		fs.Usage()
		os.Exit(2)
	}
}

func checkSheet(table *hexgrid.Table, layout hexgrid.Layout, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, _ := f.Stat()
	records, err := sheet.Parse(f)
	if err != nil {
		return err
	}

	board, err := hexmap.Bind(table, layout, records, nil)
	if err != nil {
		return err
	}

	if info != nil {
		fmt.Printf("file:      %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	}
	fmt.Printf("rows:      %d\n", len(records))
	fmt.Printf("hexes:     %d (radius %d)\n", table.Len(), table.Radius())
	fmt.Printf("uncharted: %d\n", max(0, table.Len()-len(records)))
	fmt.Printf("overflow:  %d\n", len(board.Overflow))

	visible := 0
	for _, c := range board.Cells {
		if c.Visible {
			visible++
		}
	}
	fmt.Printf("visible:   %d\n", visible)

	counts := board.Counts()
	types := make([]terrain.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Printf("  %-9s %d\n", t.Name(), counts[t])
	}
	return nil
}

func intArg(args []string, i int) int {
	if len(args) <= i {
		fail(fmt.Errorf("%s: missing argument %d", args[0], i))
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		fail(fmt.Errorf("%s: %q is not an integer", args[0], args[i]))
	}
	return n
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "hexctl:", err)
	os.Exit(1)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
