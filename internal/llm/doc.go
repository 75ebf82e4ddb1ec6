// Package llm defines the provider-agnostic generation contract and the
// shared algorithm every vendor adapter runs: message assembly, retry with
// exponential backoff, latency and cost accounting, and recovery of JSON
// content from imperfect model output.
//
// Adapters implement the small ModelCaller plug-point (one raw vendor call
// plus identity and pricing) and delegate their Generate method to the
// Generate function in this package. The Generator interface is what
// consumers — the service orchestrator and its callers — program against.
package llm
