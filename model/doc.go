// Package model defines the provider-neutral request/response shapes exchanged
// with an LLM service and the Generator boundary the agent loop calls through.
// Vendor adapters live in the subpackages model/openai and model/anthropic;
// the WithTimeout decorator turns a hung provider into a *TimeoutError the
// loop can reason about.
package model
