// Package cityjson computes roof areas for CityJSON city models.
//
// For every Building and BuildingPart the package sums the area of all faces
// whose semantic surface is RoofSurface, over every Solid and MultiSurface
// geometry record, and stores the total as the total_area_roof attribute.
// Everything else in the document is written back unchanged.
//
// # Basic Usage
//
//	parser := cityjson.NewParser()
//	defer parser.Close()
//
//	doc, err := parser.Parse(ctx, "delft.city.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := cityjson.Process(ctx, doc, cityjson.DefaultProcessOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := parser.Write(ctx, doc, "delft.out.city.json", cityjson.OutputIndent); err != nil {
//	    log.Fatal(err)
//	}
//
// # Locations
//
// Parse and Write accept local paths, gs://bucket/object locations and, for
// reading only, zip://archive.zip!entry.city.json.
//
// # Area Rules
//
// Face areas are computed with Newell's method on the outer ring, so sloped
// and vertical faces are measured in true 3D. Inner rings are ignored unless
// ProcessOptions.SubtractHoles is set. A face whose semantic value is null
// has no surface and never counts.
//
// # Spatial Queries
//
// The document builds an R-tree over the 2D footprints of its objects:
//
//	tile := cityjson.Bounds{MinX: 85000, MinY: 446000, MaxX: 85500, MaxY: 446500}
//	inTile := doc.ObjectsInBounds(tile)
//
// Setting ProcessOptions.Bounds restricts Process to the same objects.
//
// # Error Handling
//
// Only a structurally unusable document fails (*ErrDocumentParse). Problems
// confined to one geometry record (*ErrSemanticsShapeMismatch,
// *ErrGeometryIndex, *ErrInvalidGeometry) skip that record; they are logged,
// counted in the Report and returned wrapped in *GeometryError:
//
//	for _, obj := range report.Objects {
//	    for _, err := range obj.Errors {
//	        var idx *cityjson.ErrGeometryIndex
//	        if errors.As(err, &idx) {
//	            fmt.Printf("%s: bad vertex %d\n", obj.ID, idx.Index)
//	        }
//	    }
//	}
//
// # Batch Processing
//
// ProcessFiles runs many documents through a worker pool:
//
//	results, errs := cityjson.ProcessFiles(ctx, jobs, parser,
//	    cityjson.DefaultProcessOptions(), cityjson.DefaultLoadOptions())
package cityjson
