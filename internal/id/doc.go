// Package id generates document identifiers.
//
// Document ids are UUID version 7 strings. Version 7 embeds a millisecond
// timestamp followed by a monotonic sub-millisecond sequence, so ids compare
// lexicographically in creation order within a process. Sorting a collection
// by "-_id" therefore lists the newest documents first.
//
// Short ids are 16-character hex strings used where brevity matters, such as
// request ids in logs.
package id
