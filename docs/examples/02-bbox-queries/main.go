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

	doc, err := parser.Parse(ctx, "gs://3dbag-tiles/v2/9-284-556.city.json")
	if err != nil {
		log.Fatal(err)
	}

	// Delft city centre, RD New (EPSG:28992)
	area := cityjson.Bounds{
		MinX: 84500, MinY: 446800,
		MaxX: 85500, MaxY: 447600,
	}

	// R-tree query on the 2D footprints
	objects := doc.ObjectsInBounds(area)
	fmt.Printf("Objects in area: %d of %d\n", len(objects), doc.ObjectCount())

	opts := cityjson.DefaultProcessOptions()
	opts.Bounds = &area
	opts.LoD = "2.2"

	report, err := cityjson.Process(ctx, doc, opts)
	if err != nil {
		log.Fatal(err)
	}

	for _, res := range report.Objects {
		fmt.Printf("  %s: %.2f m²\n", res.ID, res.Area)
	}
}
