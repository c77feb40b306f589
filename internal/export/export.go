package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"peermap/internal/model"
)

// WriteNodesCSV writes graph nodes to CSV with a fixed column order.
func WriteNodesCSV(w io.Writer, nodes []model.Node) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "kind", "addrs"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, n := range nodes {
		record := []string{
			n.ID,
			string(n.Kind),
			strings.Join(n.Addrs, " "),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WriteEdgesCSV writes logical edges to CSV with a fixed column order.
func WriteEdgesCSV(w io.Writer, edges []model.Edge) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"id",
		"source",
		"target",
		"bidirectional",
		"bandwidth_mbps",
		"latency_ms",
		"protocol",
		"offset",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range edges {
		record := []string{
			e.ID,
			e.Source,
			e.Target,
			strconv.FormatBool(e.Bidirectional),
			strconv.FormatFloat(e.BandwidthMbps, 'f', 3, 64),
			strconv.FormatFloat(e.LatencyMs, 'f', 3, 64),
			e.Protocol,
			strconv.FormatFloat(e.Offset, 'f', 1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WriteGraphJSON writes a built graph as indented JSON.
func WriteGraphJSON(w io.Writer, g *model.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// WriteFrameJSON writes one rendered frame as indented JSON.
func WriteFrameJSON(w io.Writer, frame model.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(frame)
}
