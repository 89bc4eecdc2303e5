// Command gen-session generates synthetic JSONL landmark sessions for
// testing replay.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/courtside-data/stroke.report/internal/session"
)

func main() {
	output := flag.String("o", "session.jsonl", "output path")
	strokes := flag.Int("n", 5, "number of strokes")
	coil := flag.Float64("coil", 25, "shoulder coil in degrees")
	reach := flag.Float64("reach", 0.25, "wrist travel during the forward swing")
	angled := flag.Bool("angled", false, "add shoulder depth so the camera view reads angled")
	flag.Parse()

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()

	gen := session.NewSyntheticGenerator(session.SynthConfig{
		Strokes:       *strokes,
		CoilDeg:       *coil,
		SwingReach:    *reach,
		IncludeTorso3: *angled,
	})
	w := session.NewWriter(f)
	records := gen.Generate()
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			log.Fatalf("failed to write record: %v", err)
		}
	}
	log.Printf("✓ Created: %s (%d strokes, %d frames)", *output, *strokes, len(records))
}
