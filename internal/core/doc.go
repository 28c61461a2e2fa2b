// Package core holds listabob's domain logic: typed lists, the value codec,
// CSV type inference, import materialization and export. It has no HTTP or
// SQL code; web handlers and the CLI drive it through [Service], and
// storage backends implement [Store].
//
// # Values
//
// Every cell is a [StoredValue] with one populated slot chosen by the
// column's [StorageCategory]. [Encode] maps an API value onto a slot and
// [Decode] maps it back. [EncodeImport] is the lenient variant used for CSV
// cells: values that do not parse fall back to raw text (or are dropped for
// rating columns) instead of failing the import.
//
// # Import pipeline
//
//  1. [Service.PreviewCSV] decodes the upload (UTF-8, else Latin-1), parses
//     it and runs [InferColumnType] over each column.
//  2. The client confirms names and types.
//  3. [Service.MaterializeCSV] builds a [ListBundle] and the store writes it
//     in one transaction. An [ImportLimiter] caps concurrent imports.
//
// # Errors
//
// Bad input is reported as [*ValidationError] or [*ConversionError]; missing
// rows wrap [ErrNotFound]. [MapError] turns any error into a coded
// [UserMessage] for display.
package core
