// Package xlsx implements the workbook protocol against a local .xlsx file
// using excelize, and writes estimate reports.
package xlsx
