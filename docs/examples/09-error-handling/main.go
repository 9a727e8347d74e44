package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tudelft3d/mrtools/pkg/cityjson"
)

func safeParse(ctx context.Context, parser cityjson.Parser, path string) (*cityjson.Document, error) {
	doc, err := parser.Parse(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}

		var parseErr *cityjson.ErrDocumentParse
		if errors.As(err, &parseErr) {
			log.Printf("Invalid CityJSON in %s: %v", path, parseErr)
		}
		return nil, err
	}

	if doc.ObjectCount() == 0 {
		log.Printf("Warning: %s contains no CityObjects", path)
	}
	return doc, nil
}

func main() {
	ctx := context.Background()
	parser := cityjson.NewParser()
	defer parser.Close()

	doc, err := safeParse(ctx, parser, "3dbag_tile.city.json")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	// Broken geometry records are skipped per object, not per document
	report, err := cityjson.Process(ctx, doc, cityjson.DefaultProcessOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, res := range report.Objects {
		for _, gerr := range res.Errors {
			var geomErr *cityjson.GeometryError
			if errors.As(gerr, &geomErr) {
				fmt.Printf("%s geometry %d skipped (%s): %v\n",
					geomErr.Object, geomErr.Geometry, cityjson.SkipReason(gerr), geomErr.Err)
			}
		}
	}
	if !report.Complete() {
		fmt.Printf("%d records skipped\n", report.Skipped)
	}

	_, err = safeParse(ctx, parser, "missing.city.json")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
