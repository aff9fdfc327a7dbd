// Command genmock writes a synthetic Automated Traffic Volume Counts CSV in
// the NYC DOT column layout. Counts are placed around real counter locations
// in each borough, stored in EPSG:2263 like the published file, and include a
// small share of blank volumes and malformed geometries so the loader's
// tolerance paths are exercised.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/traffic_counts.csv -rows 5000 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jaswdr/faker"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/reproject"
)

var header = []string{
	"RequestID", "Boro", "Yr", "M", "D", "HH", "MM", "Vol",
	"SegmentID", "WktGeom", "street", "fromSt", "toSt", "Direction",
}

type site struct {
	boro     string
	lat, lon float64
}

var sites = []site{
	{"Manhattan", 40.7128, -74.0060},
	{"Manhattan", 40.7580, -73.9855},
	{"Manhattan", 40.8116, -73.9465},
	{"Brooklyn", 40.6782, -73.9442},
	{"Brooklyn", 40.6501, -73.9496},
	{"Queens", 40.7282, -73.7949},
	{"Queens", 40.7498, -73.8702},
	{"Bronx", 40.8448, -73.8648},
	{"Staten Island", 40.5795, -74.1502},
}

var directions = []string{"NB", "SB", "EB", "WB"}

// hourProfile scales volume by time of day with morning and evening peaks.
func hourProfile(h int) float64 {
	peak := func(center float64) float64 {
		d := float64(h) - center
		return math.Exp(-d * d / 6)
	}
	return 0.2 + peak(8) + 0.9*peak(17.5)
}

type options struct {
	out      string
	rows     int
	seed     int64
	yearMin  int
	yearMax  int
	blankPct float64
	badPct   float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.out, "out", "data/mock/traffic_counts.csv", "output CSV path")
	flag.IntVar(&opts.rows, "rows", 5000, "number of rows to generate")
	flag.Int64Var(&opts.seed, "seed", 42, "random seed for reproducible output")
	flag.IntVar(&opts.yearMin, "year-min", 2014, "first survey year generated")
	flag.IntVar(&opts.yearMax, "year-max", 2023, "last survey year generated")
	flag.Float64Var(&opts.blankPct, "blank", 0.02, "fraction of rows with a blank volume")
	flag.Float64Var(&opts.badPct, "bad-geometry", 0.01, "fraction of rows with malformed geometry")
	flag.Parse()

	if opts.rows <= 0 || opts.yearMin > opts.yearMax {
		flag.Usage()
		return fmt.Errorf("rows must be positive and year-min must not exceed year-max")
	}

	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := generate(f, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", opts.rows, opts.out)
	return nil
}

func generate(out io.Writer, opts options) error {
	toStatePlane, err := reproject.NewTransform("EPSG:4326", "EPSG:2263")
	if err != nil {
		return fmt.Errorf("create inverse transform: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.seed))
	fake := faker.NewWithSeed(rand.NewSource(opts.seed))

	// Each segment keeps its street names and location across rows so that
	// several counts fall into the same cell.
	type segment struct {
		id               int
		site             site
		lat, lon         float64
		street, from, to string
		direction        string
		base             float64
	}
	segments := make([]segment, max(opts.rows/25, 1))
	for i := range segments {
		s := sites[rng.Intn(len(sites))]
		segments[i] = segment{
			id:        100000 + i,
			site:      s,
			lat:       s.lat + (rng.Float64()-0.5)*0.04,
			lon:       s.lon + (rng.Float64()-0.5)*0.04,
			street:    fake.Address().StreetName(),
			from:      fake.Address().StreetName(),
			to:        fake.Address().StreetName(),
			direction: directions[rng.Intn(len(directions))],
			base:      50 + rng.Float64()*450,
		}
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range opts.rows {
		seg := segments[rng.Intn(len(segments))]
		hour := rng.Intn(24)
		year := opts.yearMin + rng.Intn(opts.yearMax-opts.yearMin+1)

		x, y, err := toStatePlane(seg.lon, seg.lat)
		if err != nil {
			return fmt.Errorf("project segment %d: %w", seg.id, err)
		}
		geom := wkt.MarshalString(orb.Point{math.Round(x*100) / 100, math.Round(y*100) / 100})
		if rng.Float64() < opts.badPct {
			geom = "POINT (" + fake.Lorem().Word() + ")"
		}

		vol := strconv.Itoa(int(seg.base * hourProfile(hour) * (0.8 + 0.4*rng.Float64())))
		if rng.Float64() < opts.blankPct {
			vol = ""
		}

		row := []string{
			strconv.Itoa(20000 + i),
			seg.site.boro,
			strconv.Itoa(year),
			strconv.Itoa(1 + rng.Intn(12)),
			strconv.Itoa(1 + rng.Intn(28)),
			strconv.Itoa(hour),
			strconv.Itoa(15 * rng.Intn(4)),
			vol,
			strconv.Itoa(seg.id),
			geom,
			seg.street,
			seg.from,
			seg.to,
			seg.direction,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
