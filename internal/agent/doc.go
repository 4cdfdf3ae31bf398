// Package agent orchestrates the query pipeline: validate the session,
// retrieve relevant chunks, compose the prompt, generate the answer,
// and record the completed exchange.
//
// The pipeline degrades rather than fails when retrieval breaks: a
// retrieval error drops the context block and generation proceeds from
// history alone. Generation errors are fatal to the query and leave the
// session history untouched, so history only ever contains completed
// exchanges.
//
// Agent holds no session lock across retrieval or generation. It pins
// the session while the query is in flight so expiry cannot remove it
// between validation and the final append.
package agent
