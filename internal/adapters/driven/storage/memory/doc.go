// Package memory provides in-memory implementations of the driven ports.
// They back the memory:// history DSN and serve as fakes in service and
// adapter tests. The workbook fake lives in memorytest.
package memory
