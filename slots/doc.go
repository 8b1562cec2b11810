// Package slots owns the occupancy set: which numbered slots (000-999) are
// currently marked as occupied.
//
// The set is persisted as a single JSON document:
//
//	{
//	  "ocupados": [
//	    "num-025",
//	    "num-137"
//	  ]
//	}
//
// A Store is constructed once at startup around a Backend (a file on disk by
// default, see FileBackend) and shared by pointer with the chat dispatcher and
// the HTTP read API. Mutations (Toggle, Reset) are serialized by the Store so
// concurrent commands never lose each other's writes; reads go straight to the
// backend, which must replace the document atomically.
package slots
