package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tudelft3d/mrtools/pkg/cityjson"
)

func main() {
	ctx := context.Background()

	parser := cityjson.NewParser()
	defer parser.Close()

	doc, err := parser.Parse(ctx, "3dbag_tile.city.json")
	if err != nil {
		log.Fatal(err)
	}

	report, err := cityjson.Process(ctx, doc, cityjson.DefaultProcessOptions())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("CityObjects: %d\n", doc.ObjectCount())
	fmt.Printf("Roof faces: %d\n", report.Faces)

	for _, obj := range doc.Objects() {
		if area, ok := obj.RoofArea(); ok {
			fmt.Printf("  %s (%s): %.2f m²\n", obj.ID(), obj.Type(), area)
		}
	}

	if err := parser.Write(ctx, doc, "3dbag_tile.roof.city.json", cityjson.OutputIndent); err != nil {
		log.Fatal(err)
	}
}
