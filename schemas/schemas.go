// Package schemas embeds the JSON Schemas for the documents the scraper reads.
package schemas

import _ "embed"

// AppIDsName is the file name of the app identifiers schema.
const AppIDsName = "app_ids.schema.json"

// AppIDs is the schema of the app identifiers document.
//
//go:embed app_ids.schema.json
var AppIDs []byte
