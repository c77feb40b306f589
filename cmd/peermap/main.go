package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"peermap/internal/addrutil"
	"peermap/internal/config"
	"peermap/internal/export"
	"peermap/internal/layout"
	"peermap/internal/model"
	"peermap/internal/source"
	"peermap/internal/topology"
	"peermap/internal/ui"
	"peermap/internal/viewer"
)

const usage = `peermap - p2p topology viewer engine (terminal MVP)

Usage:
  peermap init --config <path> [--url <base>]
  peermap snapshot --config <path> [--url <base>]
  peermap watch --config <path> [--url <base>] [--stream <ws-url>]
  peermap watch --mock [--peers <n>] [--seed <n>]
  peermap layout --config <path> [--file <snapshot.json>] [--ticks <n>] [--json]
  peermap export csv --config <path> [--file <snapshot.json>] [--nodes] [--out <path>]
  peermap export json --config <path> [--file <snapshot.json>] [--frame --ticks <n>] [--out <path>]
  peermap mock [--peers <n>] [--seed <n>] [--steps <n>]
  peermap parse <addr> [<addr>...]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
	case "init":
		handleInit(os.Args[2:])
	case "snapshot":
		handleSnapshot(os.Args[2:])
	case "watch":
		handleWatch(os.Args[2:])
	case "layout":
		handleLayout(os.Args[2:])
	case "export":
		handleExport(os.Args[2:])
	case "mock":
		handleMock(os.Args[2:])
	case "parse":
		handleParse(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func handleInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	url := fs.String("url", "", "snapshot endpoint base URL")
	_ = fs.Parse(args)

	if *configPath == "" {
		fatal(errors.New("init requires --config"))
	}

	var cfg config.Config
	cfg.Source.URL = *url
	if err := config.Save(*configPath, cfg); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", *configPath)
}

func handleSnapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	url := fs.String("url", "", "snapshot endpoint base URL")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *url != "" {
		cfg.Source.URL = *url
	}
	if cfg.Source.URL == "" {
		fatal(errors.New("snapshot needs --url or source.url"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	snap, err := source.NewClient(cfg.Source.URL).Topology(ctx)
	if err != nil {
		fatal(err)
	}

	g := topology.Build(snap)
	topology.AssignOffsets(g.Edges, cfg.Layout.EdgeSpacing)
	printGraph(os.Stdout, g)
}

func handleWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	url := fs.String("url", "", "snapshot endpoint base URL")
	streamURL := fs.String("stream", "", "websocket snapshot stream URL")
	mock := fs.Bool("mock", false, "watch a synthetic topology")
	peers := fs.Int("peers", 8, "synthetic peer count")
	seed := fs.Int64("seed", 1, "synthetic topology seed")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *url != "" {
		cfg.Source.URL = *url
	}
	if *streamURL != "" {
		cfg.Source.StreamURL = *streamURL
	}
	if err := config.Validate(cfg); err != nil {
		fatal(err)
	}

	v := newViewer(cfg)
	defer v.Close()

	ctx, cancel := signalContext()
	defer cancel()

	interval := time.Duration(cfg.Source.PollIntervalSec) * time.Second
	switch {
	case *mock:
		gen := source.NewGenerator(*peers, *seed)
		v.Submit(gen.Snapshot())
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					gen.Step()
					v.Submit(gen.Snapshot())
				}
			}
		}()
	case cfg.Source.StreamURL != "":
		go func() {
			err := source.StreamLoop(ctx, cfg.Source.StreamURL, 3*time.Second, v.Submit)
			if err != nil && ctx.Err() == nil {
				log.Printf("stream: %v", err)
			}
		}()
	case cfg.Source.URL != "":
		client := source.NewClient(cfg.Source.URL)
		if err := client.Ping(ctx); err != nil {
			log.Printf("snapshot endpoint not responding yet: %v", err)
		}
		go func() {
			_ = source.Poll(ctx, client, interval, v.Submit)
		}()
	default:
		fatal(errors.New("watch needs --url, --stream or --mock"))
	}

	last := time.Now()
	err = v.Run(ctx, cfg.Viewport.FPS, func(f model.Frame) {
		if time.Since(last) < time.Second {
			return
		}
		last = time.Now()
		fmt.Fprintf(os.Stdout, "tick=%d nodes=%d edges=%d alpha=%.3f\n",
			f.Tick, len(f.Nodes), len(f.Edges), v.Alpha())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

func handleLayout(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	file := fs.String("file", "", "snapshot JSON file instead of HTTP")
	ticks := fs.Int("ticks", 300, "simulation ticks to run")
	jsonOut := fs.Bool("json", false, "emit the final frame as JSON")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	snap, err := loadSnapshot(cfg, *file)
	if err != nil {
		fatal(err)
	}

	v := newViewer(cfg)
	defer v.Close()

	v.Submit(snap)
	for i := 0; i < *ticks; i++ {
		v.Tick()
	}

	if *jsonOut {
		fatal(export.WriteFrameJSON(os.Stdout, v.Frame()))
		return
	}
	printPositions(os.Stdout, v.Frame())
}

func handleExport(args []string) {
	if len(args) == 0 {
		fatal(errors.New("export format required: csv or json"))
	}
	format := args[0]

	fs := flag.NewFlagSet("export "+format, flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	file := fs.String("file", "", "snapshot JSON file instead of HTTP")
	out := fs.String("out", "", "output path (default stdout)")
	nodes := fs.Bool("nodes", false, "csv: export nodes instead of edges")
	frame := fs.Bool("frame", false, "json: run the simulation and export a frame")
	ticks := fs.Int("ticks", 300, "simulation ticks for --frame")
	_ = fs.Parse(args[1:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	snap, err := loadSnapshot(cfg, *file)
	if err != nil {
		fatal(err)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}

	g := topology.Build(snap)
	topology.AssignOffsets(g.Edges, cfg.Layout.EdgeSpacing)

	switch format {
	case "csv":
		if *nodes {
			fatal(export.WriteNodesCSV(w, g.Nodes))
			return
		}
		fatal(export.WriteEdgesCSV(w, g.Edges))
	case "json":
		if *frame {
			v := newViewer(cfg)
			defer v.Close()
			v.Submit(snap)
			for i := 0; i < *ticks; i++ {
				v.Tick()
			}
			fatal(export.WriteFrameJSON(w, v.Frame()))
			return
		}
		fatal(export.WriteGraphJSON(w, g))
	default:
		fatal(fmt.Errorf("unknown export format %q", format))
	}
}

func handleMock(args []string) {
	fs := flag.NewFlagSet("mock", flag.ExitOnError)
	peers := fs.Int("peers", 8, "synthetic peer count")
	seed := fs.Int64("seed", 1, "synthetic topology seed")
	steps := fs.Int("steps", 0, "evolution steps before emitting")
	_ = fs.Parse(args)

	gen := source.NewGenerator(*peers, *seed)
	for i := 0; i < *steps; i++ {
		gen.Step()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	fatal(enc.Encode(gen.Snapshot()))
}

func handleParse(args []string) {
	if len(args) == 0 {
		fatal(errors.New("parse needs at least one address"))
	}

	fmt.Fprintf(os.Stdout, "%-44s  %-14s  %-24s  %-6s  %s\n", "ADDR", "PROTOCOL", "HOST", "PORT", "CLASS")
	for _, raw := range args {
		p := addrutil.Parse(raw)
		class := addrutil.Canonical(p.Protocol)
		fmt.Fprintf(os.Stdout, "%-44s  %-14s  %-24s  %-6s  %s\n",
			raw, p.Protocol, p.Host, p.Port, ui.ProtocolStyle(class).Sprint(class))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var cfg config.Config
		config.ApplyDefaults(&cfg)
		return cfg, nil
	}
	return config.Load(path)
}

func loadSnapshot(cfg config.Config, file string) (model.Snapshot, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return model.Snapshot{}, err
		}
		var snap model.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return model.Snapshot{}, err
		}
		return snap, nil
	}

	if cfg.Source.URL == "" {
		return model.Snapshot{}, errors.New("no snapshot source: set --file, --url or source.url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return source.NewClient(cfg.Source.URL).Topology(ctx)
}

func newViewer(cfg config.Config) *viewer.Viewer {
	return viewer.New(viewer.Options{
		Width:  cfg.Viewport.Width,
		Height: cfg.Viewport.Height,
		Tuning: layout.Tuning{
			SpringLength: cfg.Layout.SpringLength,
			SpringK:      cfg.Layout.SpringK,
			Repulsion:    cfg.Layout.Repulsion,
			Damping:      cfg.Layout.Damping,
			LabelMargin:  cfg.Layout.LabelMargin,
			Padding:      cfg.Layout.Padding,
			AlphaMin:     cfg.Layout.AlphaMin,
			AlphaDecay:   cfg.Layout.AlphaDecay,
			AlphaNudge:   cfg.Layout.AlphaNudge,
		},
		SelfRadius:  cfg.Layout.SelfRadius,
		PeerRadius:  cfg.Layout.PeerRadius,
		EdgeSpacing: cfg.Layout.EdgeSpacing,
	})
}

func printGraph(w io.Writer, g *model.Graph) {
	known := make(map[string]bool, len(g.Nodes))
	peers := 0
	nodeRows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
		if n.Kind == model.KindSelf {
			fmt.Fprintf(w, "%-12s %s\n", "self", ui.Self.Sprint(n.ID))
		} else {
			peers++
		}
		nodeRows = append(nodeRows, []string{n.ID, string(n.Kind), strings.Join(n.Addrs, " ")})
	}
	fmt.Fprintf(w, "%-12s %s\n\n", "peers", ui.Peer.Sprint(strconv.Itoa(peers)))

	ui.Table(w, []string{"ID", "KIND", "ADDRS"}, nodeRows)
	fmt.Fprintln(w)

	edgeRows := make([][]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		dir := " -> "
		if e.Bidirectional {
			dir = " <-> "
		}
		edgeRows = append(edgeRows, []string{
			e.ID,
			e.Source + dir + e.Target,
			e.Protocol,
			fmt.Sprintf("%.2f", e.BandwidthMbps),
			fmt.Sprintf("%.1f", e.LatencyMs),
			fmt.Sprintf("%+.1f", e.Offset),
		})
	}
	ui.Table(w, []string{"EDGE", "LINK", "PROTO", "MBPS", "MS", "OFFSET"}, edgeRows)
	fmt.Fprintln(w)

	dangling := 0
	for _, e := range g.Edges {
		if !known[e.Target] {
			dangling++
		}
	}
	if dangling > 0 {
		ui.Warn.Fprintf(w, "%d edge(s) reference peers missing from the snapshot\n", dangling)
	}

	s := g.Stats
	fmt.Fprintf(w, "nodes=%d edges=%d bidirectional=%d bandwidth=%.2fMbps mean_latency=%.1fms\n",
		s.Nodes, s.Edges, s.Bidirectional, s.TotalBandwidthMbps, s.MeanLatencyMs)

	protos := make([]string, 0, len(s.ByProtocol))
	for proto := range s.ByProtocol {
		protos = append(protos, proto)
	}
	sort.Strings(protos)
	for _, proto := range protos {
		fmt.Fprint(w, " ")
		ui.ProtocolStyle(proto).Fprintf(w, "%s=%d", proto, s.ByProtocol[proto])
	}
	fmt.Fprintln(w)
}

func printPositions(w io.Writer, f model.Frame) {
	rows := make([][]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		pinned := ""
		if n.Pinned {
			pinned = "pinned"
		}
		rows = append(rows, []string{
			n.ID,
			string(n.Kind),
			fmt.Sprintf("%.1f", n.X),
			fmt.Sprintf("%.1f", n.Y),
			pinned,
		})
	}
	ui.Table(w, []string{"ID", "KIND", "X", "Y", ""}, rows)
	fmt.Fprintf(w, "\ntick=%d edges=%d\n", f.Tick, len(f.Edges))
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()
	return ctx, cancel
}

func fatal(err error) {
	if err == nil {
		return
	}
	ui.Bad.Fprintln(os.Stderr, err)
	os.Exit(1)
}
