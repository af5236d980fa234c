//go:build ignore
// +build ignore

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Generates a small synthetic survey dataset for local development:
// observations, site coordinates and land-use classes in the same CSV
// shapes the server loads. Run with:
//
//	go run scripts/gen_sample_data.go -out data -sites 8 -records 500

var taxa = []string{
	"Araneae", "Coleoptera", "Diptera", "Hemiptera", "Hymenoptera",
	"Lepidoptera", "Orthoptera", "Scorpiones", "Solifugae", "Thysanoptera",
	"Blattodea", "Isopoda",
}

var traps = []string{"pitfall", "sticky", "sweep"}

var regions = []string{"Urban", "Desert", "Agricultural"}

func main() {
	out := flag.String("out", "data", "output directory")
	sites := flag.Int("sites", 8, "number of sites")
	records := flag.Int("records", 500, "number of observation rows")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	siteCodes := make([]string, *sites)
	for i := range siteCodes {
		siteCodes[i] = fmt.Sprintf("AZ-%02d", i+1)
	}

	writeObservations(filepath.Join(*out, "41_core_arthropods.csv"), rng, siteCodes, *records)
	// Leave the last site out of both lookup tables so the join
	// fallbacks (missing coordinates, Other region) show up locally.
	writeSites(filepath.Join(*out, "sites.csv"), rng, siteCodes[:len(siteCodes)-1])
	writeLandUse(filepath.Join(*out, "landuse.csv"), rng, siteCodes[:len(siteCodes)-1])

	fmt.Printf("Wrote %d observations for %d sites to %s\n", *records, *sites, *out)
}

func writeObservations(path string, rng *rand.Rand, siteCodes []string, n int) {
	w := newWriter(path)
	defer w.flush()

	w.row("site_code", "sample_date", "display_name", "trap_name", "count", "observer")

	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, rng.Intn(96), rng.Intn(28))
		count := ""
		if rng.Intn(20) != 0 { // leave ~5% of cells empty
			count = fmt.Sprintf("%d", rng.Intn(40))
		}
		w.row(
			siteCodes[rng.Intn(len(siteCodes))],
			date.Format("2006-01-02"),
			taxa[rng.Intn(len(taxa))],
			traps[rng.Intn(len(traps))],
			count,
			fmt.Sprintf("obs-%d", rng.Intn(5)+1),
		)
	}
}

func writeSites(path string, rng *rand.Rand, siteCodes []string) {
	w := newWriter(path)
	defer w.flush()

	w.row("site_code", "lat", "long")
	for _, code := range siteCodes {
		w.row(
			code,
			fmt.Sprintf("%.5f", 33.2+rng.Float64()*0.6),
			fmt.Sprintf("%.5f", -112.4+rng.Float64()*0.8),
		)
	}
}

func writeLandUse(path string, rng *rand.Rand, siteCodes []string) {
	w := newWriter(path)
	defer w.flush()

	w.row("site_code", "landuse")
	for _, code := range siteCodes {
		w.row(code, regions[rng.Intn(len(regions))])
	}
}

type writer struct {
	f *os.File
	w *csv.Writer
}

func newWriter(path string) *writer {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	return &writer{f: f, w: csv.NewWriter(f)}
}

func (w *writer) row(fields ...string) {
	if err := w.w.Write(fields); err != nil {
		log.Fatalf("write row: %v", err)
	}
}

func (w *writer) flush() {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	if err := w.f.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
}
