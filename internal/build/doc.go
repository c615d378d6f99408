// Package build runs a landscape website build: an ordered sequence of stages
// that loads the landscape, prepares logos concurrently, collects external
// data and writes the output tree.
//
// Stages run strictly in order and the first fatal stage error aborts the
// build. Per-item logo failures are never fatal; they degrade the item (empty
// logo) and are summarized in the Report.
package build
