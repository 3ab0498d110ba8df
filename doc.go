// Copyright 2026 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package gsheets is a Go client for the Google Sheets spreadsheet feeds (worksheets, list and cells)
together with the gsheets command line tool.

The client library is in the spreadsheet package. The table package converts list feed rows to and
from TSV files.

gsheets supports the following commands:

  - info, to display the spreadsheet title, owner and worksheets
  - get, to download the rows of a worksheet as a TSV file
  - put, to append the records in a TSV file to a worksheet
  - cells, to list the cells of a worksheet
  - set-cell, to update or clear a single cell
  - revision, to display the latest Google Drive revision of the spreadsheet
  - version
*/
package gsheets
