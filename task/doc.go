// Package task implements named, memoized, cooperatively-concurrent units
// of work over a hierarchical namespace: a Namespace tree holding Tasks and
// child Namespaces, Task invocation with per-argument memoization and
// caller-chain cycle detection, and Set for fanning a single argument out
// to several tasks concurrently.
package task
