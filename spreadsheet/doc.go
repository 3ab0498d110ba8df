/*
Package spreadsheet is a client for the Google Sheets feed API.

A Spreadsheet is a session against a single spreadsheet key. It fetches the worksheet list
(GetInfo), the rows of a worksheet from its list feed (GetRows, AddRow) and the cells of a
worksheet from its cells feed (GetCells). Rows and cells carry the link relations returned by
the server and are edited in place through them:

	sheet, err := spreadsheet.New(key, nil)
	...
	if err := sheet.UseServiceAccountAuthFile(ctx, "service-account.json"); err != nil {
		...
	}

	rows, err := sheet.GetRows(ctx, "od6", spreadsheet.RowQuery{OrderBy: "column:name"})
	...
	rows[0].Set("status", "done")
	err = rows[0].Save(ctx)

Anonymous sessions use the 'public' visibility and 'values' projection and can only read
published sheets. Authenticated sessions default to 'private' and 'full', which is required
for edits.

Each operation is a single synchronous request (two when a bearer token has to be renewed
first). Nothing is cached and nothing coordinates concurrent writers: two callers editing
the same row race and the last write wins.
*/
package spreadsheet
