// Package hint implements link-hint selection.
//
// On entering the hints mode a Session asks its TargetSource for the
// selectable elements, spells one label per target over a symbol
// alphabet and hands them to the Overlay. Labels all have the same
// length, the smallest that fits every target:
//
//	3 targets,  symbols "ab"   -> "aa" "ab" "ba"
//	14 targets, DefaultSymbols -> "a" "s" ... "L"
//
// The session's Custom mapping consumes symbol keys until a full label
// is typed, then follows the target through the Invoker. Discovery,
// rendering and following are host concerns behind the three
// interfaces.
package hint
