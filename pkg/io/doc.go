// Package io writes sweep results for plotting and reads them back.
//
// # JSON Format
//
// [WriteJSON] emits a [Document]: the series of a run together with a plot
// descriptor carrying everything a plotting tool needs to reproduce the
// standard transmission figure.
//
//	{
//	  "energy": -3.8,
//	  "from": 0,
//	  "to": 1,
//	  "plot": {
//	    "title": "Transmission vs Vg at E = -3.8",
//	    "xlabel": "Vg",
//	    "ylabel": "Transmission",
//	    "ylim": [0, 1.2]
//	  },
//	  "series": [
//	    {"label": "tc = 1.0", "coupling": 1, "variable": "Vg",
//	     "x": [-5, 0, 5], "t": [0, 0.93, 1], "complete": true}
//	  ]
//	}
//
// Series appear in configuration order and points in sweep order. A series
// cut short by a failure or cancellation has "complete": false and, for
// failures, an "error" message.
//
// # CSV Format
//
// [WriteCSV] emits one row per point with the header
// label,coupling,x,transmission.
//
// # Import
//
// [ReadJSON] and [ImportJSON] decode a document and check that every series
// has as many transmissions as swept values.
package io
