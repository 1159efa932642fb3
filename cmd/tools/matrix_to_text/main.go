package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/preprocess"
	"github.com/soltixdb/correlator/internal/window"
)

// Record file kinds understood by the tool
const (
	KindMatrix     = "matrix"
	KindStatistics = "statistics"
	KindSignal     = "signal"
	KindPairs      = "pairs"
)

func main() {
	// Command line flags
	kind := flag.String("kind", KindMatrix, "Record kind (matrix, statistics, signal, pairs)")
	input := flag.String("input", "", "Input record file")
	output := flag.String("output", "", "Output file (default: <input>.txt)")
	inFormat := flag.String("in-format", "binary", "Input format (binary, text)")
	inCompression := flag.String("in-compression", "none", "Input compression (none, snappy)")
	outCompression := flag.String("out-compression", "none", "Output compression (none, snappy)")
	short := flag.Int("short", 10, "Short window length, statistics only")
	long := flag.Int("long", 50, "Long window length, statistics only")

	flag.Parse()

	if *input == "" {
		log.Fatal("Error: -input parameter is required")
	}
	if *output == "" {
		*output = *input + ".txt"
	}

	inOpts, err := codec.ParseOptions(*inFormat, *inCompression)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	outOpts, err := codec.ParseOptions("text", *outCompression)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	n, err := convert(*kind, *input, *output, inOpts, outOpts, window.Sizes{Short: *short, Long: *long})
	if err != nil {
		log.Fatalf("Error converting %s: %v\n", *input, err)
	}

	fmt.Printf("Successfully wrote %d %s records to: %s\n", n, *kind, *output)
}

// convert re-stores every record of in at out and returns the count
func convert(kind, in, out string, inOpts, outOpts codec.Options, sz window.Sizes) (int, error) {
	switch kind {
	case KindMatrix:
		return restore[correlation.Pair](in, out, inOpts, outOpts, nil)
	case KindStatistics:
		if _, err := window.NewAccumulators(sz); err != nil {
			return 0, err
		}
		return restore[window.Statistics](in, out, inOpts, outOpts, window.Initializer(sz))
	case KindSignal:
		return restore[preprocess.Sample](in, out, inOpts, outOpts, nil)
	case KindPairs:
		return restore[matrix.Cell](in, out, inOpts, outOpts, nil)
	default:
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
}

func restore[T any, P codec.RecordPtr[T]](in, out string, inOpts, outOpts codec.Options, init func(*T)) (int, error) {
	var records []T
	if err := codec.LoadFile[T, P](in, inOpts, &records, init); err != nil {
		return 0, err
	}
	if err := codec.SaveFile[T, P](out, outOpts, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
