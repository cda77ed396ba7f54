// Package find scans document ranges for matches and keeps the hits in an
// ordered index.
//
// A Scanner flattens every text-bearing element of a range, hands the text
// to a Matcher and turns each hit into a marker plus a Record. The marker
// and the record are created in the same document change, so listeners on
// either side never see one without the other. Results keeps the records
// sorted by marker start.
//
// Session builds a find and replace feature on top: it owns the active
// matcher, rescans edited elements and tracks the highlighted record.
package find
