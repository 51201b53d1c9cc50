// Package conversation implements the multi-turn conversation manager:
// stateful dialogue sessions bound to a provider/model/system-prompt
// configuration, with durable ordered history and per-turn usage and
// cost accounting.
//
// The Manager orchestrates the five operations (start, continue, get,
// list, close) over flat argument maps and always returns a JSON-able
// result map carrying an isError flag; no error ever escapes to the
// transport layer. Durability lives behind the Store interface, whose
// operations are individually atomic: a turn either fully commits (user
// message, assistant reply, usage snapshot) or leaves the store exactly
// as it was.
//
// Known limitation: concurrent continue calls racing on the same
// conversation id are not serialized here. Each turn commits atomically,
// but interleaved turns may produce a history order that surprises the
// callers; the design assumes a single caller drives one conversation
// at a time.
package conversation
