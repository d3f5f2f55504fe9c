// Package hwpx provides a surgical in-place editor for HWPX word-processor
// documents. It enables targeted mutation of an existing HWPX package —
// editing table cells, inserting nested tables and images, replacing text,
// restyling runs and paragraphs — without re-serializing the document
// through a general-purpose XML writer.
//
// Basic Usage:
//
//	doc, err := hwpx.Open("report.hwpx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
//	table, err := doc.Table(0, "tbl-1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := doc.UpdateCell(0, table.ID, 0, 0, "Q3 Revenue", nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := doc.SaveAs("report-edited.hwpx"); err != nil {
//	    log.Fatal(err)
//	}
//
// Every mutating verb validates its target, snapshots the prior model state
// to the undo ring, and marks the document dirty. Some verbs (cell updates,
// nested tables, direct text edits, text replacement, image inserts) apply
// the change to the in-memory model and append a mutation-log entry that
// the save pipeline replays against the original XML bytes; the others
// patch the in-memory section XML directly and re-parse that section into
// the model. Nothing touches the on-disk file until Save or SaveAs runs the
// save pipeline.
package hwpx
